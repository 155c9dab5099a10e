package database

import (
	"fmt"
	"net/url"
	"strings"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/jmoiron/sqlx"

	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// Databricks reads name_server as the workspace host, database as the SQL
// warehouse HTTP path and password as the personal access token.
var Databricks = &Dialect{
	Name:          "Databricks SQL",
	Driver:        "databricks",
	Bind:          sqlx.QUESTION,
	DefaultSchema: "default",
	DSN:           databricksDSN,
	Catalog: Catalog{
		Version: "SELECT version()",
		Tables: `
			SELECT table_schema, table_name
			FROM information_schema.tables
			WHERE table_schema <> 'information_schema'
			ORDER BY table_schema, table_name`,
		Identity: "SELECT current_catalog(), current_user(), current_timestamp()",
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
		Quote: func(ident string) string {
			return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
		},
		Sample: func(table string, n int) string {
			return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, n)
		},
	},
}

func databricksDSN(cfg *config.Config) (string, error) {
	if cfg.Password == "" {
		return "", fmt.Errorf("databricks requires an access token in password")
	}

	host := splitHostPort(cfg.NameServer)
	if !strings.Contains(host, ":") {
		host += ":443"
	}
	path := cfg.Database
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return fmt.Sprintf("token:%s@%s%s", url.PathEscape(cfg.Password), host, path), nil
}
