// internal/output/text.go
package output

import (
	"fmt"
	"io"

	"modscan/pkg/api"
)

// WriteHitsText prints one TSV line per hit.
func WriteHitsText(w io.Writer, list []api.HitV1, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, HitTSVHeader); err != nil {
			return err
		}
	}
	for _, h := range list {
		if _, err := fmt.Fprintln(w, FormatHitRowTSV(h)); err != nil {
			return err
		}
	}
	return nil
}

// StreamHitsText is WriteHitsText over a channel.
func StreamHitsText(w io.Writer, in <-chan api.HitV1, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, HitTSVHeader); err != nil {
			return err
		}
	}
	for h := range in {
		if _, err := fmt.Fprintln(w, FormatHitRowTSV(h)); err != nil {
			return err
		}
	}
	return nil
}

// WriteChainsText prints one TSV line per chain member. Empty chains print nothing.
func WriteChainsText(w io.Writer, list []api.ChainV1, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, ChainTSVHeader); err != nil {
			return err
		}
	}
	for _, c := range list {
		for _, h := range c.Hits {
			if _, err := fmt.Fprintln(w, FormatChainRowTSV(c, h)); err != nil {
				return err
			}
		}
	}
	return nil
}
