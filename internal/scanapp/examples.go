package scanapp

import (
	"fmt"
	"io"
)

func examples(out io.Writer) {
	fmt.Fprintln(out, "  # all TATA-box hits above p_binding 0.9, as TSV")
	fmt.Fprintln(out, "  modscan --pssm tata.pssm genome.fa.gz")
	fmt.Fprintln(out, "\n  # several matrices, GFF for a genome browser")
	fmt.Fprintln(out, "  modscan -p sp1.jaspar -p nfkb.jaspar -o gff promoters.fa > sites.gff")
	fmt.Fprintln(out, "\n  # best chain of sites per record inside 500 bp")
	fmt.Fprintln(out, "  modscan -p sites.pssm --window 500 -o json promoters.fa")
	fmt.Fprintln(out, "\n  # one chain across orthologous promoters")
	fmt.Fprintln(out, "  modscan -p sites.pssm --window 500 --orthologs human.fa mouse.fa")
}
