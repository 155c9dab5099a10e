// Package cli holds the flags and start-up steps shared by the console tools.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/config"
	"github.com/gerhard-ee/sqlcrud/internal/database"
	"github.com/gerhard-ee/sqlcrud/internal/logger"
)

// EnvLogLevel overrides the default of -log-level.
const EnvLogLevel = "LOG_LEVEL"

// Common are the flags every tool accepts.
type Common struct {
	Config    string
	LogLevel  string
	LogFormat string
	NoColor   bool
	Help      bool
}

// Register adds the common flags to fs.
func Register(fs *flag.FlagSet) *Common {
	c := &Common{}

	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = "warn"
	}

	fs.StringVar(&c.Config, "config", config.DefaultPath, "Configuration file (JSON or YAML) or k8s://<namespace>/<secret>")
	fs.StringVar(&c.LogLevel, "log-level", level, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", "text", "Log format (text or json)")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&c.Help, "help", false, "Show help information")
	return c
}

// Validate checks values the flag package cannot.
func (c *Common) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return apperrors.Configf("cli.Validate", "unsupported log format: %s", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return apperrors.Config("cli.Validate", err)
	}
	return nil
}

// Logger applies -no-color and builds the logger writing to stderr.
func (c *Common) Logger(stderr io.Writer) *logrus.Logger {
	if c.NoColor {
		color.NoColor = true
	}
	return logger.New(logger.Options{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Output: stderr,
	})
}

// Connect loads the configuration and opens a session.
func (c *Common) Connect(ctx context.Context, log *logrus.Logger) (*config.Config, *database.Session, error) {
	cfg, err := config.Load(ctx, c.Config)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(logrus.Fields{
		"server":   cfg.NameServer,
		"database": cfg.Database,
		"driver":   cfg.ControladorODBC,
	}).Info("Connecting")

	session, err := database.Open(ctx, cfg, log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, session, nil
}

// Usage prints a short description followed by the flag defaults.
func Usage(fs *flag.FlagSet, out io.Writer, summary string) {
	title := color.New(color.Bold)
	title.Fprintln(out, summary)
	fmt.Fprintf(out, "\nUSO:\n  %s [opciones]\n\nOPCIONES:\n", fs.Name())
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// ReportFatal prints err the way the tools report start-up failures and
// returns the exit code.
func ReportFatal(out io.Writer, err error) int {
	if err == nil {
		return 0
	}

	fail := color.New(color.FgRed)
	switch {
	case errors.Is(err, apperrors.ErrConfig):
		fail.Fprintf(out, "✗ Error de configuración: %v\n", err)
	case errors.Is(err, apperrors.ErrConnection):
		fail.Fprintf(out, "✗ Error de conexión: %v\n", err)
	case errors.Is(err, context.Canceled):
		fail.Fprintln(out, "✗ Programa interrumpido por el usuario")
	default:
		fail.Fprintf(out, "✗ Error: %v\n", err)
	}
	return 1
}
