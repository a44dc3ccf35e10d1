// internal/chainapp/app.go
package chainapp

import (
	"bufio"
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"modscan/internal/appcore"
	"modscan/internal/chain"
	"modscan/internal/chaincli"
	"modscan/internal/cmdutil"
	"modscan/internal/hit"
	"modscan/internal/pipeline"
	"modscan/internal/runutil"
)

const name = "modscan-chain"

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	opts, code, done := appcore.Prelude(outw, stderr, chaincli.NewFlagSet(name), name, argv,
		chaincli.ParseArgs, func(o chaincli.Options) bool { return o.Version }, examples)
	if done {
		return code
	}
	log := cmdutil.NewLogger(stderr, opts.Quiet, opts.Verbose)

	span, _ := chain.ParseSpanMode(opts.Span)
	cfg := chain.Config{Window: opts.Window, Span: span}

	cols, err := LoadCollections(opts.Inputs, opts.InputFormat)
	if err != nil {
		return cmdutil.ErrorCode(stderr, err, appcore.ExitCodeFor(err))
	}
	log.WithFields(logrus.Fields{"collections": len(cols), "window": cfg.Window, "span": cfg.Span}).Debug("loaded hits")

	var regions []pipeline.Region
	if opts.Separate {
		for _, c := range cols {
			regions = append(regions, pipeline.Region{Name: c.Source, Collections: []hit.Collection{c}})
		}
	} else {
		regions = []pipeline.Region{{Collections: cols}}
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	chains, err := pipeline.SelectChains(ctx, regions, cfg, runutil.ResolveThreads(opts.Threads))
	if err != nil {
		return cmdutil.ErrorCode(stderr, err, appcore.ExitCodeFor(err))
	}

	total, werr := appcore.WriteChains(outw, opts.Output, opts.Header, regions, cfg, chains)
	if werr != nil {
		return cmdutil.ErrorCode(stderr, werr, cmdutil.ExitIO)
	}
	if total == 0 {
		code = opts.NoMatchExitCode
	}
	return cmdutil.Flush(outw, stderr, code)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
