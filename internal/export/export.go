package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/crud"
	"github.com/gerhard-ee/sqlcrud/internal/state"
)

// Exporter writes listings and records each run in a state.Manager.
type Exporter struct {
	states state.Manager
	log    *logrus.Entry
	now    func() time.Time
	open   func(path string, format Format, header []string, schema interface{}) (sink, error)
}

// New creates an Exporter. Runs are recorded in states.
func New(states state.Manager, log *logrus.Logger) *Exporter {
	return &Exporter{
		states: states,
		log:    log.WithField("component", "export"),
		now:    time.Now,
		open:   openSink,
	}
}

// Estudiantes writes every Estudiantes row to path and returns the count.
func (e *Exporter) Estudiantes(ctx context.Context, store *crud.EstudianteStore, path string, format Format) (int, error) {
	return e.export(ctx, "Estudiantes", path, format, estudianteHeader, new(estudianteRow), func(ctx context.Context) ([]row, error) {
		records, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]row, len(records))
		for i, r := range records {
			rows[i] = newEstudianteRow(r)
		}
		return rows, nil
	})
}

// Alumnos writes every alumno to path and returns the count.
func (e *Exporter) Alumnos(ctx context.Context, store *crud.AlumnoStore, path string, format Format) (int, error) {
	return e.export(ctx, "Alumno", path, format, alumnoHeader, new(alumnoRow), func(ctx context.Context) ([]row, error) {
		records, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]row, len(records))
		for i, r := range records {
			rows[i] = newAlumnoRow(r)
		}
		return rows, nil
	})
}

func (e *Exporter) export(
	ctx context.Context,
	table, path string,
	format Format,
	header []string,
	schema interface{},
	fetch func(context.Context) ([]row, error),
) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.previous(ctx, table)

	started := e.now()
	run := &state.Run{
		Table:     table,
		Path:      path,
		Format:    string(format),
		Status:    state.Running,
		StartedAt: started,
		UpdatedAt: started,
	}
	e.record(ctx, run)

	n, err := e.write(ctx, path, format, header, schema, fetch)

	run.Rows = int64(n)
	run.UpdatedAt = e.now()
	if err != nil {
		run.Status = state.Failed
		run.Error = err.Error()
		e.record(ctx, run)
		return n, err
	}

	run.Status = state.Completed
	e.record(ctx, run)
	e.log.WithFields(logrus.Fields{
		"table":  table,
		"path":   path,
		"format": format,
		"rows":   n,
	}).Info("Export completed")
	return n, nil
}

func (e *Exporter) write(
	ctx context.Context,
	path string,
	format Format,
	header []string,
	schema interface{},
	fetch func(context.Context) ([]row, error),
) (int, error) {
	rows, err := fetch(ctx)
	if err != nil {
		return 0, err
	}

	out, err := e.open(path, format, header, schema)
	if err != nil {
		return 0, err
	}

	for i, r := range rows {
		select {
		case <-ctx.Done():
			out.close()
			os.Remove(path)
			return i, ctx.Err()
		default:
		}
		if err := out.write(r); err != nil {
			out.close()
			os.Remove(path)
			return i, err
		}
	}

	if err := out.close(); err != nil {
		os.Remove(path)
		return len(rows), fmt.Errorf("failed to close %s: %w", path, err)
	}
	return len(rows), nil
}

// previous logs the last recorded run of table. A run still marked running
// means an earlier export was interrupted before it could record its end.
func (e *Exporter) previous(ctx context.Context, table string) {
	run, err := e.states.Get(ctx, table)
	if err != nil {
		e.log.WithError(err).WithField("table", table).Warn("Failed to read export state")
		return
	}
	if run == nil {
		return
	}

	fields := logrus.Fields{
		"table":   table,
		"path":    run.Path,
		"status":  run.Status,
		"rows":    run.Rows,
		"updated": run.UpdatedAt.Format(time.RFC3339),
	}
	if run.Status == state.Running {
		e.log.WithFields(fields).Warn("Previous export did not finish")
		return
	}
	e.log.WithFields(fields).Debug("Previous export")
}

// record saves run; a failure is logged but does not fail the export.
func (e *Exporter) record(ctx context.Context, run *state.Run) {
	if err := e.states.Save(ctx, run); err != nil {
		e.log.WithError(err).WithField("table", run.Table).Warn("Failed to record export state")
	}
}
