package chainapp

import (
	"fmt"
	"io"
)

func examples(out io.Writer) {
	fmt.Fprintln(out, "  # best chain from a JSON array of {source, hits}")
	fmt.Fprintln(out, "  modscan-chain --window 5000 hits.json")
	fmt.Fprintln(out, "\n  # straight from a scan, measuring between hit centres")
	fmt.Fprintln(out, "  modscan -o jsonl -p m.pssm orthologs.fa | modscan-chain -w 500 --span center -o json")
	fmt.Fprintln(out, "\n  # one chain per source")
	fmt.Fprintln(out, "  modscan-chain -w 1000 --separate hits.jsonl")
}
