// Package ingest renders the statements that load an exported listing back
// into a table, one flavour per engine.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/database"
	"github.com/gerhard-ee/sqlcrud/internal/export"
)

// Ingester generates load scripts for one engine. path is the exported file,
// table the target in the engine's default schema.
type Ingester interface {
	CSVScript(path, table string) (string, error)
	ParquetScript(path, table string) (string, error)
}

// NewIngester returns the ingester for d.
func NewIngester(d *database.Dialect) (Ingester, error) {
	switch d {
	case database.SQLServer:
		return mssqlIngester{d}, nil
	case database.Postgres:
		return postgresIngester{d}, nil
	case database.DuckDB:
		return duckdbIngester{d}, nil
	case database.Snowflake:
		return snowflakeIngester{d}, nil
	case database.Databricks:
		return databricksIngester{d}, nil
	default:
		return nil, apperrors.Configf("ingest.NewIngester", "unsupported database for ingestion: %s", d.Name)
	}
}

// Script picks the CSV or Parquet script for format.
func Script(d *database.Dialect, format export.Format, path, table string) (string, error) {
	ing, err := NewIngester(d)
	if err != nil {
		return "", err
	}
	switch format {
	case export.CSV:
		return ing.CSVScript(path, table)
	case export.Parquet:
		return ing.ParquetScript(path, table)
	default:
		return "", apperrors.Configf("ingest.Script", "unsupported format: %s", format)
	}
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func target(d *database.Dialect, table string) string {
	return d.QualifiedName(d.DefaultSchema, table)
}

func unsupported(d *database.Dialect, format export.Format) error {
	return apperrors.Configf("ingest.Script", "%s cannot load %s files", d.Name, format)
}

type mssqlIngester struct{ d *database.Dialect }

func (i mssqlIngester) CSVScript(path, table string) (string, error) {
	return fmt.Sprintf(
		"BULK INSERT %s\nFROM %s\nWITH (FORMAT = 'CSV', FIRSTROW = 2, FIELDTERMINATOR = ',', ROWTERMINATOR = '0x0a');",
		target(i.d, table), literal(path),
	), nil
}

func (i mssqlIngester) ParquetScript(path, table string) (string, error) {
	return "", unsupported(i.d, export.Parquet)
}

type postgresIngester struct{ d *database.Dialect }

// CSVScript uses psql's \copy so the file is read on the client.
func (i postgresIngester) CSVScript(path, table string) (string, error) {
	return fmt.Sprintf(`\copy %s FROM %s WITH (FORMAT csv, HEADER true, NULL '')`, target(i.d, table), literal(path)), nil
}

func (i postgresIngester) ParquetScript(path, table string) (string, error) {
	return "", unsupported(i.d, export.Parquet)
}

type duckdbIngester struct{ d *database.Dialect }

func (i duckdbIngester) CSVScript(path, table string) (string, error) {
	return fmt.Sprintf("COPY %s FROM %s (FORMAT csv, HEADER true);", target(i.d, table), literal(path)), nil
}

func (i duckdbIngester) ParquetScript(path, table string) (string, error) {
	return fmt.Sprintf("COPY %s FROM %s (FORMAT parquet);", target(i.d, table), literal(path)), nil
}

type snowflakeIngester struct{ d *database.Dialect }

func (i snowflakeIngester) stage(path string) string {
	return fmt.Sprintf("PUT file://%s @~/sqlcrud AUTO_COMPRESS = FALSE OVERWRITE = TRUE;", filepath.ToSlash(path))
}

func (i snowflakeIngester) CSVScript(path, table string) (string, error) {
	return fmt.Sprintf(
		"%s\nCOPY INTO %s\nFROM @~/sqlcrud/%s\nFILE_FORMAT = (TYPE = 'CSV' SKIP_HEADER = 1 EMPTY_FIELD_AS_NULL = TRUE)\nON_ERROR = 'ABORT_STATEMENT';",
		i.stage(path), target(i.d, table), filepath.Base(path),
	), nil
}

func (i snowflakeIngester) ParquetScript(path, table string) (string, error) {
	return fmt.Sprintf(
		"%s\nCOPY INTO %s\nFROM @~/sqlcrud/%s\nFILE_FORMAT = (TYPE = 'PARQUET')\nMATCH_BY_COLUMN_NAME = CASE_INSENSITIVE\nON_ERROR = 'ABORT_STATEMENT';",
		i.stage(path), target(i.d, table), filepath.Base(path),
	), nil
}

type databricksIngester struct{ d *database.Dialect }

// Databricks reads from cloud or volume paths; path must be one of those.
func (i databricksIngester) CSVScript(path, table string) (string, error) {
	return fmt.Sprintf(
		"COPY INTO %s\nFROM %s\nFILEFORMAT = CSV\nFORMAT_OPTIONS ('header' = 'true', 'inferSchema' = 'true');",
		target(i.d, table), literal(path),
	), nil
}

func (i databricksIngester) ParquetScript(path, table string) (string, error) {
	return fmt.Sprintf("COPY INTO %s\nFROM %s\nFILEFORMAT = PARQUET;", target(i.d, table), literal(path)), nil
}
