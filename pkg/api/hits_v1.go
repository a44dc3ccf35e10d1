// pkg/api/hits_v1.go
package api

// HitV1 is the stable JSON/JSONL schema for one binding-site hit.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type HitV1 struct {
	Source     string   `json:"source,omitempty"` // sequence / species the hit belongs to
	BinderID   string   `json:"binder_id"`
	Position   int      `json:"position"` // 0-based, forward-strand coordinates
	Length     int      `json:"length"`
	Strand     string   `json:"strand"` // "forward" | "reverse"
	PBinding   float64  `json:"p_binding"`
	LogOdds    *float64 `json:"log_odds,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`
}

// CollectionV1 groups the hits of one source; chain input is a list of these.
type CollectionV1 struct {
	Source string  `json:"source"`
	Hits   []HitV1 `json:"hits"`
}

// ChainV1 is the stable schema for a selected chain.
type ChainV1 struct {
	Region     string  `json:"region,omitempty"` // record ID; empty for a cross-source chain
	Window     int     `json:"window"`
	Span       string  `json:"span"` // "start-end" | "center"
	TotalScore float64 `json:"total_score"`
	Extent     int     `json:"extent"`
	Hits       []HitV1 `json:"hits"`
}
