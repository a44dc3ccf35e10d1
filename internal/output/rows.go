// internal/output/rows.go
package output

import (
	"fmt"
	"strconv"

	"modscan/pkg/api"
)

// Float renders scores with a fixed precision so text output is stable.
func Float(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// FormatHitRowTSV returns the hit columns (no trailing newline).
func FormatHitRowTSV(h api.HitV1) string {
	lo := ""
	if h.LogOdds != nil {
		lo = Float(*h.LogOdds)
	}
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s",
		h.SourceFile, h.Source, h.BinderID,
		h.Position, h.Position+h.Length, h.Length, h.Strand,
		Float(h.PBinding), lo,
	)
}

// FormatChainRowTSV returns one chain member row (no trailing newline).
func FormatChainRowTSV(c api.ChainV1, h api.HitV1) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s",
		c.Region, Float(c.TotalScore), h.Source, h.BinderID,
		h.Position, h.Position+h.Length, h.Length, h.Strand,
		Float(h.PBinding),
	)
}
