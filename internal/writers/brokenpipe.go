package writers

import (
	"errors"
	"io"
	"syscall"
)

// IsBrokenPipe reports whether err means the reader went away,
// e.g. `modscan ... | head`.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

// Suppress maps broken-pipe errors to nil.
func Suppress(err error) error {
	if IsBrokenPipe(err) {
		return nil
	}
	return err
}
