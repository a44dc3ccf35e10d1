package chaincli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"modscan/internal/clibase"
	"modscan/internal/cliutil"
	"modscan/internal/writers"
)

// Input formats.
const (
	InputAuto  = "auto"
	InputJSON  = "json"  // array of {source, hits}
	InputJSONL = "jsonl" // one HitV1 per line, grouped by source
)

// Options holds modscan-chain flags. Common.Inputs are hit files ("-" = STDIN).
type Options struct {
	clibase.Common

	InputFormat string
	Separate    bool // one chain per source instead of one across all sources
}

func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	clibase.UsageCommon(fs, name, func(out io.Writer, def func(string) string) {
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintf(out, "  %s --window 5000 hits.json\n", name)
		fmt.Fprintf(out, "  modscan -o jsonl --pssm m.pssm orthologs.fa | %s -w 500 -o json\n", name)

		fmt.Fprintln(out, "\nInput:")
		fmt.Fprintln(out, "  -i, --input file            Hit file(s) (repeatable) or '-' for STDIN [-]")
		fmt.Fprintf(out, "      --input-format string   auto | json | jsonl [%s]\n", def("input-format"))
		fmt.Fprintf(out, "      --separate              One chain per source [%s]\n", def("separate"))
		fmt.Fprintln(out, "\nOutput formats: text | json | jsonl")
	})
	return fs
}

func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options
	var help bool

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	inVal := &clibase.SliceValue{Dst: &c.Inputs}
	fs.Var(inVal, "input", "hit file(s) (repeatable) or '-'")
	fs.Var(inVal, "i", "alias of --input")
	fs.StringVar(&o.InputFormat, "input-format", InputAuto, "auto | json | jsonl [auto]")
	fs.BoolVar(&o.Separate, "separate", false, "one chain per source [false]")

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
	if len(c.Inputs) == 0 {
		c.Inputs = []string{"-"}
	}
	o.Common = c

	if err := clibase.Validate(&o.Common, writers.ChainFormats()); err != nil {
		return o, err
	}
	if o.Window <= 0 {
		return o, errors.New("--window must be > 0")
	}
	switch o.InputFormat {
	case InputAuto, InputJSON, InputJSONL:
	default:
		return o, fmt.Errorf("invalid --input-format %q", o.InputFormat)
	}
	return o, nil
}
