// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"modscan/internal/chain"
	"modscan/internal/clibase"
	"modscan/internal/cmdutil"
	"modscan/internal/dna"
	"modscan/internal/fasta"
	"modscan/internal/hit"
	"modscan/internal/jsonutil"
	"modscan/internal/output"
	"modscan/internal/pipeline"
	"modscan/internal/pssm"
	"modscan/internal/score"
	"modscan/internal/version"
	"modscan/internal/writers"
)

// Prelude parses argv with parse and handles help, examples, usage errors
// and --version. When done is true the caller returns code immediately.
func Prelude[T any](
	outw *bufio.Writer,
	stderr io.Writer,
	fs *flag.FlagSet,
	name string,
	argv []string,
	parse func(*flag.FlagSet, []string) (T, error),
	wantVersion func(T) bool,
	examples func(io.Writer),
) (opts T, code int, done bool) {
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	opts, err := parse(fs, argv)
	if err != nil {
		if errors.Is(err, clibase.ErrPrintedAndExitOK) {
			clibase.PrintExamples(outw, name, examples)
			return opts, cmdutil.Flush(outw, stderr, cmdutil.ExitOK), true
		}
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return opts, cmdutil.Flush(outw, stderr, cmdutil.ExitOK), true
		}
		_, _ = fmt.Fprintln(stderr, "error:", err)
		fs.SetOutput(stderr)
		fs.Usage()
		return opts, cmdutil.Flush(outw, stderr, cmdutil.ExitUsage), true
	}
	if wantVersion(opts) {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		return opts, cmdutil.Flush(outw, stderr, cmdutil.ExitOK), true
	}
	return opts, 0, false
}

// ExitCodeFor maps an error to the CLI exit code: cancellation, invalid
// input data, or I/O.
func ExitCodeFor(err error) int {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case err == nil:
		return cmdutil.ExitOK
	case errors.Is(err, context.Canceled):
		return cmdutil.ExitCancelled
	case errors.Is(err, pssm.ErrMalformed),
		errors.Is(err, fasta.ErrFormat),
		errors.Is(err, dna.ErrInvalidSymbol),
		errors.Is(err, score.ErrInvalidLength),
		errors.Is(err, score.ErrInvalidConfig),
		errors.Is(err, hit.ErrInvalidLocation),
		errors.Is(err, hit.ErrInvalidScore),
		errors.Is(err, chain.ErrInvalidWindow),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, jsonutil.ErrInvalidJSON),
		errors.As(err, &syn),
		errors.As(err, &typ):
		return cmdutil.ExitInput
	}
	return cmdutil.ExitIO
}

// WriteHits streams every record's hits through the hit writer and
// returns how many were written.
func WriteHits(ctx context.Context, out io.Writer, format string, header bool, bufSize int, recs []pipeline.Record) (int, error) {
	in, done := writers.StartHitWriter(out, format, header, bufSize)
	n, err := 0, error(nil)
send:
	for _, r := range recs {
		for _, h := range r.Hits.Hits {
			select {
			case in <- output.ToAPIHit(r.ID, r.File, h):
				n++
			case <-ctx.Done():
				err = ctx.Err()
				break send
			}
		}
	}
	close(in)
	if werr := <-done; werr != nil {
		return n, werr
	}
	return n, err
}

// WriteChains streams chains (index-aligned with regions) through the
// chain writer and returns the number of chosen hits.
func WriteChains(out io.Writer, format string, header bool, regions []pipeline.Region, cfg chain.Config, chains []chain.Chain) (int, error) {
	in, done := writers.StartChainWriter(out, format, header, len(chains))
	n := 0
	for i, ch := range chains {
		in <- output.ToAPIChain(regions[i].Name, cfg, ch)
		n += ch.Len()
	}
	close(in)
	return n, <-done
}
