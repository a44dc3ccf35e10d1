// internal/scanapp/app.go
package scanapp

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"modscan/internal/appcore"
	"modscan/internal/chain"
	"modscan/internal/cli"
	"modscan/internal/cmdutil"
	"modscan/internal/hit"
	"modscan/internal/pipeline"
	"modscan/internal/pssm"
	"modscan/internal/runutil"
	"modscan/internal/score"
)

const name = "modscan"

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	opts, code, done := appcore.Prelude(outw, stderr, cli.NewFlagSet(name), name, argv,
		cli.ParseArgs, func(o cli.Options) bool { return o.Version }, examples)
	if done {
		return code
	}
	log := cmdutil.NewLogger(stderr, opts.Quiet, opts.Verbose)

	scanners, err := loadScanners(opts)
	if err != nil {
		return cmdutil.ErrorCode(stderr, err, appcore.ExitCodeFor(err))
	}
	maxLen := pipeline.MaxMatrixLen(scanners)
	log.WithFields(logrus.Fields{"matrices": len(scanners), "longest": maxLen}).Debug("loaded matrices")

	chunkSize, overlap, warns := runutil.ValidateChunking(opts.ChunkSize, maxLen)
	for _, w := range warns {
		cmdutil.Warnf(log, "%s", w)
	}
	thr := runutil.ResolveThreads(opts.Threads)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	recs, perr := pipeline.Scan(ctx, pipeline.Config{
		Threads:   thr,
		ChunkSize: chunkSize,
		Overlap:   overlap,
		Strict:    opts.Strict,
		Log:       log,
	}, opts.Inputs, scanners)
	if perr != nil && appcore.ExitCodeFor(perr) == cmdutil.ExitCancelled {
		return cmdutil.ExitCancelled
	}

	var (
		total int
		werr  error
	)
	if opts.Window == 0 {
		total, werr = appcore.WriteHits(ctx, outw, opts.Output, opts.Header, thr*4, recs)
	} else {
		span, _ := chain.ParseSpanMode(opts.Span)
		cfg := chain.Config{Window: opts.Window, Span: span}
		regions := buildRegions(recs, opts.Orthologs)
		chains, err := pipeline.SelectChains(ctx, regions, cfg, thr)
		if err != nil {
			return cmdutil.ErrorCode(stderr, err, appcore.ExitCodeFor(err))
		}
		total, werr = appcore.WriteChains(outw, opts.Output, opts.Header, regions, cfg, chains)
	}
	if werr != nil {
		return cmdutil.ErrorCode(stderr, werr, appcore.ExitCodeFor(werr))
	}

	switch {
	case perr != nil:
		code = cmdutil.ErrorCode(stderr, perr, appcore.ExitCodeFor(perr))
	case total == 0:
		code = opts.NoMatchExitCode
	}
	return cmdutil.Flush(outw, stderr, code)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func loadScanners(o cli.Options) ([]*score.Scanner, error) {
	kind, _ := pssm.ParseKind(o.PSSMFormat)
	lopt := pssm.LoadOptions{Kind: kind, Options: pssm.Options{Background: o.Background, Pseudocount: o.Pseudocount}}
	cfg := score.Config{Threshold: o.Threshold, Prior: o.Prior, AllowWildcard: o.AllowWildcard}

	var out []*score.Scanner
	for _, path := range o.PSSMFiles {
		ms, err := pssm.Load(path, lopt)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			sc, err := score.NewScanner(m, cfg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			out = append(out, sc)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no matrices in %v", pssm.ErrMalformed, o.PSSMFiles)
	}
	return out, nil
}

// buildRegions makes one region per record, or a single ortholog region
// holding every record as its own collection.
func buildRegions(recs []pipeline.Record, orthologs bool) []pipeline.Region {
	if orthologs {
		cols := make([]hit.Collection, 0, len(recs))
		for _, r := range recs {
			cols = append(cols, r.Hits)
		}
		return []pipeline.Region{{Collections: cols}}
	}
	out := make([]pipeline.Region, 0, len(recs))
	for _, r := range recs {
		out = append(out, pipeline.Region{Name: r.ID, Collections: []hit.Collection{r.Hits}})
	}
	return out
}
