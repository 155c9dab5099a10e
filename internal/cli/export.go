package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/database"
	"github.com/gerhard-ee/sqlcrud/internal/export"
	"github.com/gerhard-ee/sqlcrud/internal/ingest"
	"github.com/gerhard-ee/sqlcrud/internal/menu"
	"github.com/gerhard-ee/sqlcrud/internal/state"
)

// Export holds the flags of the non-interactive listing export.
type Export struct {
	Path       string
	FormatName string
	Format     export.Format
	State      string
	LoadScript bool
	ShowStatus bool
	Reset      bool
}

// RegisterExport adds -export, -format, -state, -load-script,
// -export-status and -export-reset to fs.
func RegisterExport(fs *flag.FlagSet) *Export {
	e := &Export{}
	fs.StringVar(&e.Path, "export", "", "Write the full listing to this file instead of opening the menu")
	fs.StringVar(&e.FormatName, "format", string(export.CSV), "Export format (csv or parquet)")
	fs.StringVar(&e.State, "state", "", "Where to record export runs: a directory or k8s://<namespace> (default: not kept)")
	fs.BoolVar(&e.LoadScript, "load-script", false, "Print the statement that loads the export back into the database")
	fs.BoolVar(&e.ShowStatus, "export-status", false, "List the recorded export runs and exit")
	fs.BoolVar(&e.Reset, "export-reset", false, "Forget the recorded export run of this table and exit")
	return e
}

// Enabled reports whether an export was requested.
func (e *Export) Enabled() bool {
	return e.Path != ""
}

// StateOnly reports whether only the recorded runs were asked for. No
// database connection is needed then.
func (e *Export) StateOnly() bool {
	return e.ShowStatus || e.Reset
}

// Validate checks the flag combination and parses the format.
func (e *Export) Validate() error {
	if e.StateOnly() && e.Enabled() {
		return apperrors.Configf("cli.Export", "-export-status and -export-reset cannot be combined with -export")
	}
	if e.StateOnly() && e.State == "" {
		return apperrors.Configf("cli.Export", "-export-status and -export-reset need -state")
	}
	f, err := export.ParseFormat(e.FormatName)
	if err != nil {
		return err
	}
	e.Format = f
	return nil
}

// Run opens the state manager, calls write and reports the result on out.
func (e *Export) Run(
	out io.Writer,
	dialect *database.Dialect,
	table string,
	log *logrus.Logger,
	write func(x *export.Exporter, path string, format export.Format) (int, error),
) error {
	states, err := state.Open(e.State)
	if err != nil {
		return err
	}

	n, err := write(export.New(states, log), e.Path, e.Format)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "✓ %d registros de %s exportados a %s\n", n, table, e.Path)

	if !e.LoadScript {
		return nil
	}
	path, err := filepath.Abs(e.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", e.Path, err)
	}
	script, err := ingest.Script(dialect, e.Format, path, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", script)
	return nil
}

var runTitles = []string{"Tabla", "Estado", "Filas", "Formato", "Archivo", "Actualizado", "Error"}

// Status forgets the run of table when -export-reset is set and lists the
// recorded runs when -export-status is set.
func (e *Export) Status(ctx context.Context, out io.Writer, table string) error {
	states, err := state.Open(e.State)
	if err != nil {
		return err
	}
	console := menu.NewConsole(nil, out)

	if e.Reset {
		if err := states.Delete(ctx, table); err != nil {
			return err
		}
		console.Success("Estado de exportación de %s eliminado", table)
	}
	if !e.ShowStatus {
		return nil
	}

	runs, err := states.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		console.Println("No hay exportaciones registradas")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.Table,
			string(r.Status),
			strconv.FormatInt(r.Rows, 10),
			r.Format,
			r.Path,
			r.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Error,
		}
	}
	console.Table("--- EXPORTACIONES REGISTRADAS ---", runTitles, rows)
	console.Printf("\nTotal: %d\n", len(runs))
	return nil
}
