// internal/cmdutil/run.go
package cmdutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"modscan/internal/writers"
)

// Exit codes shared by the CLIs.
const (
	ExitOK        = 0
	ExitNoMatch   = 1 // default of --no-match-exit-code
	ExitUsage     = 2
	ExitIO        = 3
	ExitInput     = 4
	ExitCancelled = 130
)

// Flush flushes outw and maps the result to an exit code. A broken pipe
// is success: the reader has everything it asked for.
func Flush(outw *bufio.Writer, stderr io.Writer, code int) int {
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		_, _ = fmt.Fprintln(stderr, e)
		return ExitIO
	}
	return code
}

// ErrorCode prints err and returns code, or ExitCancelled if err is a
// context cancellation.
func ErrorCode(stderr io.Writer, err error, code int) int {
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	_, _ = fmt.Fprintln(stderr, "error:", err)
	return code
}
