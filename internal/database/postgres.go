package database

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// Postgres runs the direct SQL statements as is and maps stored procedures to
// set-returning functions of the same name called with named notation.
var Postgres = &Dialect{
	Name:          "PostgreSQL",
	Driver:        "postgres",
	Bind:          sqlx.DOLLAR,
	DefaultSchema: "public",
	DSN:           postgresDSN,
	Call:          postgresCall,
	Catalog: Catalog{
		Version: "SELECT version()",
		Tables: `
			SELECT table_schema, table_name
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'
			AND table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`,
		Procedures: `
			SELECT routine_schema, routine_name
			FROM information_schema.routines
			WHERE routine_type IN ('PROCEDURE', 'FUNCTION')
			AND routine_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY routine_schema, routine_name`,
		Identity: "SELECT current_database(), current_user, now()",
		Columns: `
			SELECT
				column_name,
				data_type,
				character_maximum_length,
				is_nullable,
				CASE WHEN is_identity = 'YES' THEN 1 ELSE 0 END,
				column_default
			FROM information_schema.columns
			WHERE table_schema = ? AND table_name = ?
			ORDER BY ordinal_position`,
		Keys: `
			SELECT constraint_name, column_name
			FROM information_schema.key_column_usage
			WHERE table_schema = ? AND table_name = ?
			ORDER BY constraint_name, ordinal_position`,
		Quote: quoteDouble,
		Sample: func(table string, n int) string {
			return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, n)
		},
	},
	integrity: isPostgresIntegrityError,
}

func postgresDSN(cfg *config.Config) (string, error) {
	if cfg.NameServer == "" {
		return "", fmt.Errorf("name_server is empty")
	}

	q := url.Values{}
	// lib/pq honours PGSSLMODE; only default it when the operator has not.
	if os.Getenv("PGSSLMODE") == "" {
		q.Set("sslmode", "disable")
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     splitHostPort(cfg.NameServer),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func postgresCall(procedure string, params ...string) string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = p + " => ?"
	}
	return "SELECT * FROM " + procedure + "(" + strings.Join(args, ", ") + ")"
}

// isPostgresIntegrityError matches SQLSTATE class 23 (integrity_constraint_violation).
func isPostgresIntegrityError(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Class() == "23"
}
