package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/jmoiron/sqlx"

	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// SQL Server error numbers that signal a constraint violation.
const (
	mssqlErrUniqueConstraint = 2627
	mssqlErrUniqueIndex      = 2601
	mssqlErrConstraint       = 547
	mssqlErrNullInsert       = 515
)

// SQLServer is the default dialect; it is the only one the stored procedures
// were written for.
var SQLServer = &Dialect{
	Name:          "SQL Server",
	Driver:        "sqlserver",
	Bind:          sqlx.AT,
	DefaultSchema: "dbo",
	DSN:           sqlServerDSN,
	Call:          sqlServerCall,
	Catalog: Catalog{
		Version: "SELECT @@VERSION",
		Tables: `
			SELECT TABLE_SCHEMA, TABLE_NAME
			FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_SCHEMA, TABLE_NAME`,
		Procedures: `
			SELECT ROUTINE_SCHEMA, ROUTINE_NAME
			FROM INFORMATION_SCHEMA.ROUTINES
			WHERE ROUTINE_TYPE = 'PROCEDURE'
			ORDER BY ROUTINE_SCHEMA, ROUTINE_NAME`,
		Identity: "SELECT DB_NAME(), SUSER_SNAME(), GETDATE()",
		Columns: `
			SELECT
				COLUMN_NAME,
				DATA_TYPE,
				CHARACTER_MAXIMUM_LENGTH,
				IS_NULLABLE,
				COLUMNPROPERTY(OBJECT_ID(QUOTENAME(TABLE_SCHEMA) + '.' + QUOTENAME(TABLE_NAME)), COLUMN_NAME, 'IsIdentity'),
				COLUMN_DEFAULT
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`,
		Keys: `
			SELECT CONSTRAINT_NAME, COLUMN_NAME
			FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`,
		Quote: func(ident string) string {
			return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
		},
		Sample: func(table string, n int) string {
			return fmt.Sprintf("SELECT TOP %d * FROM %s", n, table)
		},
	},
	integrity: isMSSQLIntegrityError,
}

// sqlServerDSN accepts the server forms an ODBC connection string would:
// host, host\INSTANCE, host,port and the "." / "(local)" shorthands.
func sqlServerDSN(cfg *config.Config) (string, error) {
	host, instance := cfg.NameServer, ""
	if i := strings.Index(host, `\`); i >= 0 {
		host, instance = host[:i], host[i+1:]
	}
	if host == "." || strings.EqualFold(host, "(local)") {
		host = "localhost"
	}
	if host == "" {
		return "", fmt.Errorf("name_server is empty")
	}

	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("app name", "sqlcrud")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     splitHostPort(host),
		Path:     instance,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func sqlServerCall(procedure string, params ...string) string {
	if len(params) == 0 {
		return "EXEC " + procedure
	}
	assignments := make([]string, len(params))
	for i, p := range params {
		assignments[i] = fmt.Sprintf("@%s = ?", p)
	}
	return "EXEC " + procedure + " " + strings.Join(assignments, ", ")
}

func isMSSQLIntegrityError(err error) bool {
	var msErr mssql.Error
	if !errors.As(err, &msErr) {
		return false
	}
	switch msErr.Number {
	case mssqlErrUniqueConstraint, mssqlErrUniqueIndex, mssqlErrConstraint, mssqlErrNullInsert:
		return true
	}
	return false
}
