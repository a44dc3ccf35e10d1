// internal/clibase/common.go
package clibase

import (
	"errors"
	"flag"
	"fmt"

	"modscan/internal/chain"
	"modscan/internal/cliutil"
)

// Common holds CLI fields shared by modscan and modscan-chain.
type Common struct {
	// Input
	Inputs []string

	// Chain
	Window int
	Span   string

	// Performance
	Threads int

	// Output
	Output          string
	Header          bool
	NoMatchExitCode int

	// Misc
	Quiet    bool
	Verbose  bool
	Version  bool
	Examples bool
}

// SliceValue appends each value to a *[]string (repeatable flags).
type SliceValue struct{ Dst *[]string }

func (s *SliceValue) String() string {
	if s == nil || s.Dst == nil {
		return ""
	}
	return fmt.Sprint(*s.Dst)
}

func (s *SliceValue) Set(v string) error {
	*s.Dst = append(*s.Dst, v)
	return nil
}

// Register wires shared flags onto fs and returns a pointer to the "no-header" bool
// that AfterParse turns into Common.Header.
func Register(fs *flag.FlagSet, c *Common) *bool {
	// Chain
	fs.IntVar(&c.Window, "window", 0, "chain window in bp (0=no chain selection) [0]")
	fs.IntVar(&c.Window, "w", 0, "alias of --window")
	fs.StringVar(&c.Span, "span", "start-end", "window span: start-end | center [start-end]")

	// Performance
	fs.IntVar(&c.Threads, "threads", 0, "worker threads (0=all CPUs) [0]")
	fs.IntVar(&c.Threads, "t", 0, "alias of --threads")

	// Output
	fs.StringVar(&c.Output, "output", "text", "output format [text]")
	fs.StringVar(&c.Output, "o", "text", "alias of --output")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line [false]")
	fs.IntVar(&c.NoMatchExitCode, "no-match-exit-code", 1, "exit code when nothing is found [1]")

	// Misc
	fs.BoolVar(&c.Quiet, "quiet", false, "only log errors [false]")
	fs.BoolVar(&c.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&c.Verbose, "verbose", false, "log debug detail [false]")
	fs.BoolVar(&c.Version, "v", false, "print version and exit [false]")
	fs.BoolVar(&c.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&c.Examples, "examples", false, "print usage examples and exit [false]")

	return &noHeader
}

// AfterParse finalizes header and expands positionals into Inputs.
func AfterParse(c *Common, noHeader *bool, posArgs []string) error {
	c.Header = !*noHeader
	if len(posArgs) > 0 {
		exp, err := cliutil.ExpandPositionals(posArgs)
		if err != nil {
			return err
		}
		c.Inputs = append(c.Inputs, exp...)
	}
	return nil
}

// Validate applies shared CLI invariants. formats lists the accepted --output values.
func Validate(c *Common, formats []string) error {
	if c.Threads < 0 {
		return errors.New("--threads must be ≥ 0")
	}
	if c.Window < 0 {
		return errors.New("--window must be ≥ 0")
	}
	if _, err := chain.ParseSpanMode(c.Span); err != nil {
		return fmt.Errorf("invalid --span %q", c.Span)
	}
	if !contains(formats, c.Output) {
		return fmt.Errorf("invalid --output %q (want one of %v)", c.Output, formats)
	}
	if c.NoMatchExitCode < 0 || c.NoMatchExitCode > 255 {
		return errors.New("--no-match-exit-code must be between 0 and 255")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
