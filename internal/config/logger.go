package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger: JSON lines outside dev, coloured
// text in dev.  Unknown LOG_LEVEL values fall back to info.
func NewLogger(cfg Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if cfg.IsDev() {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
