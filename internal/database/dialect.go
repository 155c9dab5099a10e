package database

import (
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// Dialect describes how to reach one engine and how to speak to it.
type Dialect struct {
	// Name is shown to the operator, e.g. "SQL Server".
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Bind is the sqlx bind type statements written with ? are rebound to.
	Bind int
	// DefaultSchema is used when the operator does not name one.
	DefaultSchema string
	// DSN builds the driver connection string.
	DSN func(cfg *config.Config) (string, error)
	// Call renders a stored procedure invocation with one ? per parameter.
	// Nil when the engine has no procedure support usable by the tools.
	Call func(procedure string, params ...string) string
	// Catalog holds the diagnostic queries.
	Catalog Catalog

	integrity func(err error) bool
}

// Catalog holds engine specific metadata queries. An empty query means the
// engine does not expose that information.
type Catalog struct {
	Version    string
	Tables     string // schema, table
	Procedures string // schema, procedure
	Identity   string // database, user, server time
	Columns    string // args schema, table: name, type, max length, nullable, identity, default
	Keys       string // args schema, table: constraint, column
	Quote      func(ident string) string
	Sample     func(table string, n int) string
}

// SupportsProcedures reports whether Call is available.
func (d *Dialect) SupportsProcedures() bool {
	return d.Call != nil
}

// IsIntegrityViolation reports whether err is a constraint violation.
func (d *Dialect) IsIntegrityViolation(err error) bool {
	if d.integrity == nil || err == nil {
		return false
	}
	return d.integrity(err)
}

// QualifiedName quotes schema and table for use in catalog statements.
func (d *Dialect) QualifiedName(schema, table string) string {
	if schema == "" {
		return d.Catalog.Quote(table)
	}
	return d.Catalog.Quote(schema) + "." + d.Catalog.Quote(table)
}

// Dialects lists every supported engine.
func Dialects() []*Dialect {
	return []*Dialect{SQLServer, Postgres, DuckDB, Snowflake, Databricks}
}

// Resolve maps the configured driver identifier to a dialect. ODBC driver
// names such as "ODBC Driver 17 for SQL Server" are accepted.
func Resolve(driverID string) (*Dialect, error) {
	id := strings.ToLower(strings.Trim(strings.TrimSpace(driverID), "{}"))

	switch {
	case id == "sqlserver" || id == "mssql" || strings.Contains(id, "sql server"):
		return SQLServer, nil
	case id == "postgres" || strings.Contains(id, "postgresql"):
		return Postgres, nil
	case strings.Contains(id, "duckdb"):
		return DuckDB, nil
	case strings.Contains(id, "snowflake"):
		return Snowflake, nil
	case strings.Contains(id, "databricks") || strings.Contains(id, "simba spark"):
		return Databricks, nil
	default:
		return nil, apperrors.Configf("database.Resolve", "unsupported controlador_odbc: %q", driverID)
	}
}

func quoteDouble(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func splitHostPort(server string) string {
	// ODBC writes host,port; URLs want host:port.
	return strings.Replace(server, ",", ":", 1)
}
