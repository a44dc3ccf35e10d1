// internal/cmdutil/log.go
package cmdutil

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the stderr logger shared by the CLIs: warnings by
// default, errors only with quiet, debug with verbose.
func NewLogger(dst io.Writer, quiet, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(dst)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	switch {
	case quiet:
		l.SetLevel(logrus.ErrorLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// Warnf logs a warning unless the logger is quiet.
func Warnf(log logrus.FieldLogger, format string, a ...any) {
	if log == nil {
		return
	}
	log.Warnf(format, a...)
}
