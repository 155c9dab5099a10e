package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// Snowflake uses name_server as the account identifier. Key constraints are
// informational there, so duplicate ids are not rejected by the engine.
var Snowflake = &Dialect{
	Name:          "Snowflake",
	Driver:        "snowflake",
	Bind:          sqlx.QUESTION,
	DefaultSchema: "PUBLIC",
	DSN:           snowflakeDSN,
	Catalog: Catalog{
		Version: "SELECT CURRENT_VERSION()",
		Tables: `
			SELECT TABLE_SCHEMA, TABLE_NAME
			FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_SCHEMA, TABLE_NAME`,
		Procedures: `
			SELECT PROCEDURE_SCHEMA, PROCEDURE_NAME
			FROM INFORMATION_SCHEMA.PROCEDURES
			ORDER BY PROCEDURE_SCHEMA, PROCEDURE_NAME`,
		Identity: "SELECT CURRENT_DATABASE(), CURRENT_USER(), CURRENT_TIMESTAMP()",
		Columns: `
			SELECT
				COLUMN_NAME,
				DATA_TYPE,
				CHARACTER_MAXIMUM_LENGTH,
				IS_NULLABLE,
				CASE WHEN IS_IDENTITY = 'YES' THEN 1 ELSE 0 END,
				COLUMN_DEFAULT
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`,
		Quote: quoteDouble,
		Sample: func(table string, n int) string {
			return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, n)
		},
	},
}

func snowflakeDSN(cfg *config.Config) (string, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:  cfg.NameServer,
		User:     cfg.Username,
		Password: cfg.Password,
		Database: cfg.Database,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create DSN: %w", err)
	}
	return dsn, nil
}
