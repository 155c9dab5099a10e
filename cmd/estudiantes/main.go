package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gerhard-ee/sqlcrud/internal/cli"
	"github.com/gerhard-ee/sqlcrud/internal/crud"
	"github.com/gerhard-ee/sqlcrud/internal/export"
	"github.com/gerhard-ee/sqlcrud/internal/menu"
)

const summary = "estudiantes - consola CRUD sobre la tabla Estudiantes con sentencias SQL parametrizadas"

type options struct {
	common *cli.Common
	export *cli.Export
}

func initFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("estudiantes", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{
		common: cli.Register(fs),
		export: cli.RegisterExport(fs),
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.common.Help {
		cli.Usage(fs, stderr, summary)
		return nil, flag.ErrHelp
	}
	if err := opts.common.Validate(); err != nil {
		return nil, err
	}
	if err := opts.export.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout, stderr io.Writer) int {
	log := opts.common.Logger(stderr)

	if opts.export.StateOnly() {
		return cli.ReportFatal(stdout, opts.export.Status(ctx, stdout, "Estudiantes"))
	}

	_, session, err := opts.common.Connect(ctx, log)
	if err != nil {
		return cli.ReportFatal(stdout, err)
	}
	store := crud.NewEstudianteStore(session)

	if opts.export.Enabled() {
		defer session.Close()
		err := opts.export.Run(stdout, session.Dialect(), "Estudiantes", log,
			func(x *export.Exporter, path string, format export.Format) (int, error) {
				return x.Estudiantes(ctx, store, path, format)
			})
		return cli.ReportFatal(stdout, err)
	}

	console := menu.NewConsole(stdin, stdout)
	console.Success("Conexión exitosa a la base de datos (%s)", session.Dialect().Name)

	// The menu reports its own failures and closes the session.
	if err := menu.NewEstudiantes(console, store, session, log).Run(ctx); err != nil {
		return 1
	}
	return 0
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
	code := run(ctx, opts, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
