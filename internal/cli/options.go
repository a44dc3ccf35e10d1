// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"modscan/internal/clibase"
	"modscan/internal/cliutil"
	"modscan/internal/pssm"
	"modscan/internal/writers"
)

// DefaultThreshold is the p_binding cut-off used by modscan.
const DefaultThreshold = 0.9

// Options holds all modscan flags and arguments. Common.Inputs are the
// FASTA files.
type Options struct {
	clibase.Common

	// Matrices
	PSSMFiles   []string
	PSSMFormat  string // auto | counts | probabilities
	Pseudocount float64
	Background  []float64

	// Scoring
	Threshold     float64
	Prior         float64
	AllowWildcard bool
	Strict        bool

	// Scan
	ChunkSize int
	Orthologs bool // one chain across all records instead of one per record
}

// Formats returns the --output values accepted with the given window.
func Formats(window int) []string {
	if window > 0 {
		return writers.ChainFormats()
	}
	return writers.HitFormats()
}

// NewFlagSet returns a FlagSet with the modscan usage text installed.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	clibase.UsageCommon(fs, name, func(out io.Writer, def func(string) string) {
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintf(out, "  %s --pssm sites.pssm ref.fa\n", name)
		fmt.Fprintf(out, "  %s --pssm a.jaspar --pssm b.jaspar --window 500 --orthologs orthologs.fa\n", name)

		fmt.Fprintln(out, "\nInput:")
		fmt.Fprintln(out, "  -p, --pssm file             Matrix file(s) (repeatable) [*]")
		fmt.Fprintln(out, "  -s, --sequences file        FASTA file(s) (repeatable) or '-' for STDIN")
		fmt.Fprintf(out, "      --pssm-format string    Matrix rows: auto | counts | probabilities [%s]\n", def("pssm-format"))
		fmt.Fprintf(out, "      --pseudocount float     Pseudocount for rows with zeros (0=default) [%s]\n", def("pseudocount"))
		fmt.Fprintln(out, "      --background a,c,g,t    Background frequencies [uniform]")

		fmt.Fprintln(out, "\nScoring:")
		fmt.Fprintf(out, "      --threshold float       Keep hits with p_binding above this (<=0 keeps all) [%s]\n", def("threshold"))
		fmt.Fprintf(out, "      --prior float           Prior probability of a site [%s]\n", def("prior"))
		fmt.Fprintf(out, "      --allow-n               Score windows containing N [%s]\n", def("allow-n"))
		fmt.Fprintf(out, "      --strict                Reject IUPAC ambiguity codes instead of reading them as N [%s]\n", def("strict"))

		fmt.Fprintln(out, "\nScan:")
		fmt.Fprintf(out, "      --chunk-size int        Split sequences into N-bp windows (0=no chunking) [%s]\n", def("chunk-size"))
		fmt.Fprintf(out, "      --orthologs             With --window: one chain across all records [%s]\n", def("orthologs"))
		fmt.Fprintln(out, "\nOutput formats: text | json | jsonl | gff (hits); text | json | jsonl (chains, with --window)")
	})
	return fs
}

// ParseArgs parses argv into Options.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options
	var help bool
	var background string

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	pssmVal := &clibase.SliceValue{Dst: &o.PSSMFiles}
	fs.Var(pssmVal, "pssm", "matrix file(s) (repeatable)")
	fs.Var(pssmVal, "p", "alias of --pssm")
	seqVal := &clibase.SliceValue{Dst: &c.Inputs}
	fs.Var(seqVal, "sequences", "FASTA file(s) (repeatable) or '-'")
	fs.Var(seqVal, "s", "alias of --sequences")
	fs.StringVar(&o.PSSMFormat, "pssm-format", "auto", "matrix rows: auto | counts | probabilities [auto]")
	fs.Float64Var(&o.Pseudocount, "pseudocount", 0, "pseudocount for rows with zeros (0=default) [0]")
	fs.StringVar(&background, "background", "", "background frequencies a,c,g,t [uniform]")

	fs.Float64Var(&o.Threshold, "threshold", DefaultThreshold, "keep hits with p_binding above this")
	fs.Float64Var(&o.Prior, "prior", 0.5, "prior probability of a site [0.5]")
	fs.BoolVar(&o.AllowWildcard, "allow-n", false, "score windows containing N [false]")
	fs.BoolVar(&o.Strict, "strict", false, "reject IUPAC ambiguity codes [false]")

	fs.IntVar(&o.ChunkSize, "chunk-size", 0, "split sequences into N-bp windows (0=no chunking) [0]")
	fs.BoolVar(&o.Orthologs, "orthologs", false, "one chain across all records [false]")

	fs.BoolVar(&help, "h", false, "show this help [false]")
	fs.BoolVar(&help, "help", false, "show this help [false]")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if help {
		return o, flag.ErrHelp
	}
	if c.Examples {
		return o, clibase.ErrPrintedAndExitOK
	}
	if c.Version {
		o.Common = c
		return o, nil
	}
	if err := clibase.AfterParse(&c, noHeader, posArgs); err != nil {
		return o, err
	}
	o.Common = c

	if err := clibase.Validate(&o.Common, Formats(o.Window)); err != nil {
		return o, err
	}
	if len(o.PSSMFiles) == 0 {
		return o, errors.New("at least one --pssm file is required")
	}
	if len(o.Inputs) == 0 {
		return o, errors.New("at least one sequence file is required")
	}
	if _, err := pssm.ParseKind(o.PSSMFormat); err != nil {
		return o, fmt.Errorf("invalid --pssm-format %q", o.PSSMFormat)
	}
	if o.Pseudocount < 0 {
		return o, errors.New("--pseudocount must be ≥ 0")
	}
	if !(o.Prior > 0 && o.Prior < 1) {
		return o, errors.New("--prior must be in (0,1)")
	}
	if o.Threshold > 1 {
		return o, errors.New("--threshold must be ≤ 1")
	}
	if o.ChunkSize < 0 {
		return o, errors.New("--chunk-size must be ≥ 0")
	}
	if o.Orthologs && o.Window == 0 {
		return o, errors.New("--orthologs requires --window")
	}
	bg, err := ParseBackground(background)
	if err != nil {
		return o, err
	}
	o.Background = bg
	return o, nil
}

// ParseBackground reads "a,c,g,t" frequencies; "" means uniform (nil).
func ParseBackground(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("--background wants 4 comma-separated values, got %d", len(parts))
	}
	out := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("--background: %v", err)
		}
		out[i] = v
	}
	return out, nil
}
