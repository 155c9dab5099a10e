package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/cli"
	"github.com/gerhard-ee/sqlcrud/internal/config"
	"github.com/gerhard-ee/sqlcrud/internal/database"
	"github.com/gerhard-ee/sqlcrud/internal/diagnostics"
)

const summary = "dbcheck - verifica la conexión y la estructura de las tablas"

type options struct {
	common  *cli.Common
	inspect string
	schema  string
}

func initFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("dbcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{common: cli.Register(fs)}
	fs.StringVar(&opts.inspect, "inspect", "", "Describe this table (e.g. Alumno) instead of checking the connection")
	fs.StringVar(&opts.schema, "schema", "", "Schema of the inspected table (default: the engine's default schema)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.common.Help {
		cli.Usage(fs, stderr, summary)
		return nil, flag.ErrHelp
	}
	if opts.schema != "" && opts.inspect == "" {
		return nil, apperrors.Configf("dbcheck", "-schema requires -inspect")
	}
	if err := opts.common.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) int {
	log := opts.common.Logger(stderr)
	printer := diagnostics.NewPrinter(stdout)

	cfg, session, err := opts.common.Connect(ctx, log)
	if err != nil {
		if cfg != nil {
			printer.Connection(&diagnostics.ConnectionReport{Connection: cfg.Redacted(), Engine: cfg.ControladorODBC})
		}
		return cli.ReportFatal(stdout, err)
	}
	defer session.Close()
	printer.Success("Conexión exitosa")

	if opts.inspect != "" {
		err = inspect(ctx, session, opts, printer)
	} else {
		err = check(ctx, session, cfg, printer)
	}
	if err != nil {
		log.WithError(err).Debug("Check failed")
		return cli.ReportFatal(stdout, err)
	}
	return 0
}

func check(ctx context.Context, session *database.Session, cfg *config.Config, printer *diagnostics.Printer) error {
	report, err := diagnostics.CheckConnection(ctx, session, cfg)
	printer.Connection(report)
	if err != nil {
		return err
	}
	printer.Success("Todas las verificaciones completadas")
	return nil
}

func inspect(ctx context.Context, session *database.Session, opts *options, printer *diagnostics.Printer) error {
	report, err := diagnostics.InspectTable(ctx, session, opts.schema, opts.inspect)
	if err != nil {
		return err
	}
	printer.Table(report)
	printer.Success("Validación de la tabla %s completada", report.Table)
	return nil
}

func main() {
	opts, err := initFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(cli.ReportFatal(os.Stderr, err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
