package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the single sink every component writes progress messages to.
// Logging is observational only; no caller may depend on it for control flow.
type Logger interface {
	Log(message string)
}

// LogrusSink adapts a logrus logger to the Logger interface.
type LogrusSink struct {
	L *logrus.Logger
}

func (s LogrusSink) Log(message string) {
	s.L.Info(message)
}

// NopLogger discards everything. Handy in tests.
type NopLogger struct{}

func (NopLogger) Log(string) {}

// NewLogrusSink builds a sink at the given logrus level name; an
// unparsable level falls back to info.
func NewLogrusSink(level string) Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return LogrusSink{L: l}
}

var (
	globalOnce sync.Once
	global     Logger
)

// Global returns the process-wide default sink, lazily initialized.
// Components take an injected Logger and fall back to this one.
func Global() Logger {
	globalOnce.Do(func() {
		l := logrus.New()
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		global = LogrusSink{L: l}
	})
	return global
}
