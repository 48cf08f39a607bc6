// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger at info level for production and a text logger
// at debug level for every other environment.
func New(output io.Writer, env string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)

	if env != "production" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
