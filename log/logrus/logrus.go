// Package logrus adapts a logrus entry to transcache.Logger.
package logrus

import (
	"io"

	"github.com/ZaguanLabs/transcache"
	"github.com/sirupsen/logrus"
)

var _ transcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f transcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f transcache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f transcache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f transcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}

// New builds a text-formatted logger writing to w.
func New(w io.Writer, level string) (LogrusLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return LogrusLogger{}, err
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return LogrusLogger{E: logrus.NewEntry(l)}, nil
}
