// Package logger builds the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus logger writing to out at the named level.
// A nil out writes to stderr, keeping stdout free for protocol traffic.
func New(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if out == nil {
		out = os.Stderr
	}

	l := logrus.New()
	l.Out = out
	l.Formatter = &logrus.JSONFormatter{}
	l.SetLevel(lvl)
	return l, nil
}
