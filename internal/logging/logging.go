// Package logging builds the logrus logger shared by the client and front ends.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to w. format is "text" or "json"; debug lowers
// the level from info to debug.
func New(w io.Writer, format string, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !debug})
	}
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
