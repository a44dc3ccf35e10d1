// internal/output/json.go
package output

import (
	"fmt"
	"io"

	"modscan/internal/chain"
	"modscan/internal/hit"
	"modscan/internal/jsonutil"
	"modscan/pkg/api"
)

// ToAPIHit converts a domain Hit to the stable wire schema (v1).
func ToAPIHit(source, file string, h hit.Hit) api.HitV1 {
	v := api.HitV1{
		Source:     source,
		BinderID:   h.BinderID,
		Position:   h.Position,
		Length:     h.Length,
		Strand:     h.Strand.Name(),
		PBinding:   h.Score,
		SourceFile: file,
	}
	if h.HasLogOdds {
		lo := h.LogOdds
		v.LogOdds = &lo
	}
	return v
}

// FromAPIHit converts a wire hit back to the domain type and validates it.
func FromAPIHit(v api.HitV1) (hit.Hit, error) {
	st, err := hit.ParseStrand(v.Strand)
	if err != nil {
		return hit.Hit{}, err
	}
	h := hit.Hit{
		BinderID: v.BinderID,
		Location: hit.Location{Position: v.Position, Length: v.Length, Strand: st},
		Score:    v.PBinding,
	}
	if v.LogOdds != nil {
		h.LogOdds, h.HasLogOdds = *v.LogOdds, true
	}
	if err := h.Validate(); err != nil {
		return hit.Hit{}, err
	}
	return h, nil
}

// ToAPICollection converts one source's hits.
func ToAPICollection(c hit.Collection, file string) api.CollectionV1 {
	out := api.CollectionV1{Source: c.Source, Hits: make([]api.HitV1, 0, len(c.Hits))}
	for _, h := range c.Hits {
		out.Hits = append(out.Hits, ToAPIHit(c.Source, file, h))
	}
	return out
}

// FromAPICollections converts and validates wire collections.
func FromAPICollections(list []api.CollectionV1) ([]hit.Collection, error) {
	out := make([]hit.Collection, 0, len(list))
	for ci, c := range list {
		col := hit.Collection{Source: c.Source, Hits: make([]hit.Hit, 0, len(c.Hits))}
		for hi, v := range c.Hits {
			h, err := FromAPIHit(v)
			if err != nil {
				return nil, fmt.Errorf("collection %d (%s) hit %d: %w", ci, c.Source, hi, err)
			}
			col.Hits = append(col.Hits, h)
		}
		out = append(out, col)
	}
	return out, nil
}

// ToAPIChain converts a selected chain.
func ToAPIChain(region string, cfg chain.Config, ch chain.Chain) api.ChainV1 {
	v := api.ChainV1{
		Region:     region,
		Window:     cfg.Window,
		Span:       cfg.Span.String(),
		TotalScore: ch.Total,
		Extent:     ch.Extent(),
		Hits:       make([]api.HitV1, 0, len(ch.Members)),
	}
	for _, m := range ch.Members {
		v.Hits = append(v.Hits, ToAPIHit(m.SourceName, "", m.Hit))
	}
	return v
}

// WriteJSON writes v as a single pretty-indented JSON document.
func WriteJSON(w io.Writer, v any) error {
	return jsonutil.EncodePretty(w, v)
}
