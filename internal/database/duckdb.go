package database

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// DuckDB treats the database field as a file path (":memory:" for an
// in-process database). It has no stored procedures.
var DuckDB = &Dialect{
	Name:          "DuckDB",
	Driver:        "duckdb",
	Bind:          sqlx.QUESTION,
	DefaultSchema: "main",
	DSN:           duckDBDSN,
	Catalog: Catalog{
		Version: "SELECT version()",
		Tables: `
			SELECT table_schema, table_name
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
			ORDER BY table_schema, table_name`,
		Identity: "SELECT current_database(), CAST(NULL AS VARCHAR), now()",
		Columns: `
			SELECT
				column_name,
				data_type,
				character_maximum_length,
				is_nullable,
				0,
				column_default
			FROM information_schema.columns
			WHERE table_schema = ? AND table_name = ?
			ORDER BY ordinal_position`,
		Quote: quoteDouble,
		Sample: func(table string, n int) string {
			return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, n)
		},
	},
	integrity: func(err error) bool {
		return strings.Contains(err.Error(), "Constraint Error")
	},
}

func duckDBDSN(cfg *config.Config) (string, error) {
	if cfg.Database == ":memory:" {
		return "", nil
	}
	if cfg.Database == "" {
		return "", fmt.Errorf("database file path is empty")
	}
	return filepath.Clean(cfg.Database), nil
}
