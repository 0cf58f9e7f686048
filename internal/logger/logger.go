package logger

import (
	"github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger.
func Init(level string, debug bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if debug {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
}

// With returns an entry tagged with the component name.
func With(comp string) *logrus.Entry {
	return logrus.WithField("comp", comp)
}
