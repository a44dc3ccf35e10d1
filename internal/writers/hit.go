// internal/writers/hit.go
package writers

import (
	"io"

	"modscan/internal/output"
	"modscan/pkg/api"
)

func init() {
	RegisterHit(output.FormatText, output.StreamHitsText)
	RegisterHit(output.FormatGFF, func(w io.Writer, in <-chan api.HitV1, _ bool) error {
		return output.StreamHitsGFF(w, in)
	})
	RegisterHit(output.FormatJSON, func(w io.Writer, in <-chan api.HitV1, _ bool) error {
		buf := []api.HitV1{}
		for h := range in {
			buf = append(buf, h)
		}
		return output.WriteJSON(w, buf)
	})
	RegisterHit(output.FormatJSONL, func(w io.Writer, in <-chan api.HitV1, _ bool) error {
		sink, done := StartHitJSONLWriter(w, 0)
		for h := range in {
			sink <- h
		}
		close(sink)
		return <-done
	})
}

// StartHitWriter spins up a writer goroutine for hits in the given format.
// Hits are written in arrival order; callers sort upstream.
func StartHitWriter(out io.Writer, format string, header bool, bufSize int) (chan<- api.HitV1, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan api.HitV1, bufSize)
	errCh := make(chan error, 1)

	go func() {
		fn, err := lookupHit(format)
		if err != nil {
			drain(in)
			errCh <- err
			return
		}
		err = fn(out, in, header)
		drain(in)
		errCh <- Suppress(err)
	}()
	return in, errCh
}
