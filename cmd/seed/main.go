package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/cli"
	"github.com/gerhard-ee/sqlcrud/internal/config"
	"github.com/gerhard-ee/sqlcrud/internal/crud"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

const summary = "seed - crea la tabla Estudiantes en un archivo DuckDB local para practicar sin servidor"

const createEstudiantesSQL = `
	CREATE TABLE IF NOT EXISTS Estudiantes (
		IDEstudiante INTEGER PRIMARY KEY,
		NombreEstudiante VARCHAR(50) NOT NULL,
		ApellidoEstudiante VARCHAR(50) NOT NULL,
		Email VARCHAR(100),
		Telefono VARCHAR(20)
	)`

var samples = []crud.Estudiante{
	{ID: 1, Nombre: "Ana", Apellido: "López", Email: "ana.lopez@escuela.edu", Telefono: "555-0101"},
	{ID: 2, Nombre: "Bruno", Apellido: "Díaz", Email: "bruno.diaz@escuela.edu", Telefono: "555-0102"},
	{ID: 3, Nombre: "Carla", Apellido: "Méndez", Email: "", Telefono: "555-0103"},
}

type options struct {
	common    *cli.Common
	db        string
	sample    bool
	configOut string
}

func initFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{common: cli.Register(fs)}
	fs.StringVar(&opts.db, "db", "escuela.duckdb", "DuckDB database file")
	fs.BoolVar(&opts.sample, "sample", true, "Insert sample rows")
	fs.StringVar(&opts.configOut, "config-out", "", "Also write a configuration file pointing at the database")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.common.Help {
		cli.Usage(fs, stderr, summary)
		return nil, flag.ErrHelp
	}
	if opts.db == "" || opts.db == ":memory:" {
		return nil, apperrors.Configf("seed", "-db must name a file")
	}
	if err := opts.common.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func localConfig(path string) *config.Config {
	return &config.Config{
		NameServer:      "local",
		Database:        path,
		Username:        "local",
		ControladorODBC: "duckdb",
	}
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) int {
	log := opts.common.Logger(stderr)
	if err := seed(ctx, opts, stdout, log); err != nil {
		return cli.ReportFatal(stdout, err)
	}
	return 0
}

func seed(ctx context.Context, opts *options, stdout io.Writer, log *logrus.Logger) error {
	cfg := localConfig(opts.db)

	session, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Close()

	if _, err := session.ExecuteCommand(ctx, createEstudiantesSQL); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ Tabla Estudiantes lista en %s\n", opts.db)

	if opts.sample {
		store := crud.NewEstudianteStore(session)
		inserted := 0
		for _, e := range samples {
			_, err := store.Insert(ctx, e)
			switch {
			case err == nil:
				inserted++
			case errors.Is(err, apperrors.ErrIntegrity):
				log.WithField("id", e.ID).Debug("Sample row already present")
			default:
				return err
			}
		}
		fmt.Fprintf(stdout, "✓ %d registros de ejemplo insertados\n", inserted)
	}

	if opts.configOut != "" {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		if err := os.WriteFile(opts.configOut, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.configOut, err)
		}
		fmt.Fprintf(stdout, "✓ Configuración escrita en %s\n", opts.configOut)
	}
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
