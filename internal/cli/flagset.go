package cli

import "flag"

// NewQuietFlagSet returns a FlagSet with ContinueOnError and no usage output.
func NewQuietFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	return fs
}
