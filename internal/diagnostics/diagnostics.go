// Package diagnostics checks that the configured database is reachable and
// shaped the way the consoles expect.
package diagnostics

import (
	"context"
	"fmt"
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/config"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// sampleRows is how many rows InspectTable shows.
const sampleRows = 3

// Querier is the part of database.Session diagnostics needs.
type Querier interface {
	Dialect() *database.Dialect
	ExecuteQuery(ctx context.Context, statement string, args ...interface{}) (*database.ResultSet, error)
}

var _ Querier = (*database.Session)(nil)

// ObjectName is a schema qualified table or procedure.
type ObjectName struct {
	Schema string
	Name   string
}

func (o ObjectName) String() string {
	if o.Schema == "" {
		return o.Name
	}
	return o.Schema + "." + o.Name
}

// Identity is who and where the session is connected as.
type Identity struct {
	Database   string
	User       string
	ServerTime string
}

// ConnectionReport is what CheckConnection found. Fields are filled in the
// order the checks run, so a failed check leaves the later ones empty.
type ConnectionReport struct {
	Connection map[string]string
	Engine     string
	Version    string
	Tables     []ObjectName
	// Procedures is nil when the engine does not list procedures.
	Procedures []ObjectName
	// ProbeTable is the table the SELECT permission probe read.
	ProbeTable string
	ProbeRows  int
	Identity   *Identity
}

// CheckConnection runs the connection checks in order and stops at the first
// failure, returning what it found so far alongside the error.
func CheckConnection(ctx context.Context, q Querier, cfg *config.Config) (*ConnectionReport, error) {
	d := q.Dialect()
	report := &ConnectionReport{
		Connection: cfg.Redacted(),
		Engine:     d.Name,
	}

	rs, err := q.ExecuteQuery(ctx, d.Catalog.Version)
	if err != nil {
		return report, err
	}
	if !rs.Empty() {
		report.Version = firstLine(rs.Rows[0].String(0))
	}

	if report.Tables, err = listObjects(ctx, q, d.Catalog.Tables); err != nil {
		return report, err
	}
	if d.Catalog.Procedures != "" {
		if report.Procedures, err = listObjects(ctx, q, d.Catalog.Procedures); err != nil {
			return report, err
		}
	}

	if len(report.Tables) > 0 {
		first := report.Tables[0]
		report.ProbeTable = first.String()
		rs, err := q.ExecuteQuery(ctx, d.Catalog.Sample(d.QualifiedName(first.Schema, first.Name), 1))
		if err != nil {
			return report, err
		}
		report.ProbeRows = len(rs.Rows)
	}

	if d.Catalog.Identity != "" {
		rs, err := q.ExecuteQuery(ctx, d.Catalog.Identity)
		if err != nil {
			return report, err
		}
		if !rs.Empty() {
			row := rs.Rows[0]
			report.Identity = &Identity{
				Database:   row.Display(0),
				User:       row.Display(1),
				ServerTime: row.Display(2),
			}
		}
	}

	return report, nil
}

func listObjects(ctx context.Context, q Querier, statement string) ([]ObjectName, error) {
	rs, err := q.ExecuteQuery(ctx, statement)
	if err != nil {
		return nil, err
	}
	names := make([]ObjectName, len(rs.Rows))
	for i, row := range rs.Rows {
		names[i] = ObjectName{Schema: row.String(0), Name: row.String(1)}
	}
	return names, nil
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// Column describes one column of an inspected table.
type Column struct {
	Name      string
	Type      string
	MaxLength string
	Nullable  bool
	Identity  bool
	Default   string
}

// Key is one column taking part in a key constraint.
type Key struct {
	Constraint string
	Column     string
}

// TableReport is what InspectTable found.
type TableReport struct {
	Table    ObjectName
	Columns  []Column
	Keys     []Key
	RowCount int64
	Sample   *database.ResultSet
}

// Nullable counts columns that accept NULL.
func (r *TableReport) Nullable() int {
	n := 0
	for _, c := range r.Columns {
		if c.Nullable {
			n++
		}
	}
	return n
}

// IdentityColumn returns the identity column name or "".
func (r *TableReport) IdentityColumn() string {
	for _, c := range r.Columns {
		if c.Identity {
			return c.Name
		}
	}
	return ""
}

// InspectTable describes table in schema (the dialect default when empty).
// A table with no columns in the catalog does not exist.
func InspectTable(ctx context.Context, q Querier, schema, table string) (*TableReport, error) {
	const op = "diagnostics.InspectTable"

	d := q.Dialect()
	if schema == "" {
		schema = d.DefaultSchema
	}
	report := &TableReport{Table: ObjectName{Schema: schema, Name: table}}

	rs, err := q.ExecuteQuery(ctx, d.Catalog.Columns, schema, table)
	if err != nil {
		return nil, err
	}
	if rs.Empty() {
		return nil, apperrors.Query(op, fmt.Errorf("table %s does not exist", report.Table))
	}
	for _, row := range rs.Rows {
		report.Columns = append(report.Columns, Column{
			Name:      row.String(0),
			Type:      row.String(1),
			MaxLength: row.Display(2),
			Nullable:  strings.EqualFold(row.String(3), "YES"),
			Identity:  row.Int(4, 0) == 1,
			Default:   row.Display(5),
		})
	}

	if d.Catalog.Keys != "" {
		rs, err := q.ExecuteQuery(ctx, d.Catalog.Keys, schema, table)
		if err != nil {
			return nil, err
		}
		for _, row := range rs.Rows {
			report.Keys = append(report.Keys, Key{Constraint: row.String(0), Column: row.String(1)})
		}
	}

	name := d.QualifiedName(schema, table)

	rs, err = q.ExecuteQuery(ctx, "SELECT COUNT(*) FROM "+name)
	if err != nil {
		return nil, err
	}
	if !rs.Empty() {
		if report.RowCount, err = rs.Rows[0].Int64(0); err != nil {
			return nil, apperrors.Query(op, fmt.Errorf("invalid row count: %w", err))
		}
	}

	if report.Sample, err = q.ExecuteQuery(ctx, d.Catalog.Sample(name, sampleRows)); err != nil {
		return nil, err
	}

	return report, nil
}
