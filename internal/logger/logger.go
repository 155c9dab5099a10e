package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error; defaults to warn
	Format string // text or json
	Output io.Writer
}

// New builds a logger for a console tool. Stdout belongs to the menu, so
// logs go to stderr unless another output is given.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	log.SetOutput(opts.Output)

	if opts.Level == "" {
		opts.Level = "warn"
	}
	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'warn'. Error: %v", opts.Level, err)
		level = logrus.WarnLevel
	}
	log.SetLevel(level)

	if strings.ToLower(opts.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.Debugf("Logger initialized at level %s", log.GetLevel())
	return log
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
