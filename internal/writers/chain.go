// internal/writers/chain.go
package writers

import (
	"io"

	"modscan/internal/output"
	"modscan/pkg/api"
)

func init() {
	RegisterChain(output.FormatText, func(w io.Writer, in <-chan api.ChainV1, header bool) error {
		if err := output.WriteChainsText(w, nil, header); err != nil {
			return err
		}
		for c := range in {
			if err := output.WriteChainsText(w, []api.ChainV1{c}, false); err != nil {
				return err
			}
		}
		return nil
	})
	RegisterChain(output.FormatJSON, func(w io.Writer, in <-chan api.ChainV1, _ bool) error {
		buf := []api.ChainV1{}
		for c := range in {
			buf = append(buf, c)
		}
		return output.WriteJSON(w, buf)
	})
	RegisterChain(output.FormatJSONL, func(w io.Writer, in <-chan api.ChainV1, _ bool) error {
		sink, done := StartChainJSONLWriter(w, 0)
		for c := range in {
			sink <- c
		}
		close(sink)
		return <-done
	})
}

// StartChainWriter spins up a writer goroutine for selected chains.
func StartChainWriter(out io.Writer, format string, header bool, bufSize int) (chan<- api.ChainV1, <-chan error) {
	if bufSize <= 0 {
		bufSize = 16
	}
	in := make(chan api.ChainV1, bufSize)
	errCh := make(chan error, 1)

	go func() {
		fn, err := lookupChain(format)
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
