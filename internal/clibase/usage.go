// internal/clibase/usage.go
package clibase

import (
	"flag"
	"fmt"
	"io"

	"modscan/internal/version"
)

// UsageCommon installs a shared Usage() handler on fs.
// extra prints tool-specific sections (usage examples, input blocks, etc.).
func UsageCommon(fs *flag.FlagSet, name string, extra func(out io.Writer, def func(string) string)) {
	fs.Usage = func() {
		out := fs.Output()
		def := func(flagName string) string {
			if f := fs.Lookup(flagName); f != nil {
				return f.DefValue
			}
			return ""
		}

		fmt.Fprintf(out, "%s – PSSM binding-site scanner and chain selector\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)

		if extra != nil {
			extra(out, def)
		}

		fmt.Fprintln(out, "\nChain:")
		fmt.Fprintf(out, "  -w, --window int            Window in bp that a chain must fit in [%s]\n", def("window"))
		fmt.Fprintf(out, "      --span string           Window span: start-end | center [%s]\n", def("span"))

		fmt.Fprintln(out, "\nPerformance:")
		fmt.Fprintf(out, "  -t, --threads int           Worker threads (0=all CPUs) [%s]\n", def("threads"))

		fmt.Fprintln(out, "\nOutput:")
		fmt.Fprintf(out, "  -o, --output string         Output format [%s]\n", def("output"))
		fmt.Fprintf(out, "      --no-header             Suppress header line [%s]\n", def("no-header"))
		fmt.Fprintf(out, "      --no-match-exit-code int  Exit code when nothing is found [%s]\n", def("no-match-exit-code"))

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintf(out, "  -q, --quiet                 Only log errors [%s]\n", def("quiet"))
		fmt.Fprintf(out, "      --verbose               Log debug detail [%s]\n", def("verbose"))
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "      --examples              Print usage examples and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
}
