// internal/output/gff.go
package output

import (
	"io"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"modscan/pkg/api"
)

// GFFSource is the source column of GFF records.
const GFFSource = "modscan"

// GFFWriter writes hits as GFF features, one per hit.
type GFFWriter struct {
	w *gff.Writer
}

// NewGFFWriter writes the GFF version header to w.
func NewGFFWriter(w io.Writer) *GFFWriter {
	gw := gff.NewWriter(w, 60, true)
	gw.Precision = 6
	return &GFFWriter{w: gw}
}

// Write emits one hit.
func (g *GFFWriter) Write(h api.HitV1) error {
	score := h.PBinding
	strand := seq.Plus
	if h.Strand == "reverse" {
		strand = seq.Minus
	}
	attrs := gff.Attributes{{Tag: "Binder", Value: h.BinderID}}
	if h.LogOdds != nil {
		attrs = append(attrs, gff.Attribute{Tag: "LogOdds", Value: Float(*h.LogOdds)})
	}
	_, err := g.w.Write(&gff.Feature{
		SeqName:        h.Source,
		Source:         GFFSource,
		Feature:        "TFBS",
		FeatStart:      h.Position,
		FeatEnd:        h.Position + h.Length,
		FeatScore:      &score,
		FeatStrand:     strand,
		FeatFrame:      gff.NoFrame,
		FeatAttributes: attrs,
	})
	return err
}

// WriteHitsGFF writes a slice of hits as GFF.
func WriteHitsGFF(w io.Writer, list []api.HitV1) error {
	g := NewGFFWriter(w)
	for _, h := range list {
		if err := g.Write(h); err != nil {
			return err
		}
	}
	return nil
}

// StreamHitsGFF is WriteHitsGFF over a channel.
func StreamHitsGFF(w io.Writer, in <-chan api.HitV1) error {
	g := NewGFFWriter(w)
	for h := range in {
		if err := g.Write(h); err != nil {
			return err
		}
	}
	return nil
}
