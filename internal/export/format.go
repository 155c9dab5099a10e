// Package export writes full Estudiantes and Alumno listings to CSV or
// Parquet files without going through the menus.
package export

import (
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

// Format of an export file.
type Format string

const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

// ParseFormat accepts "csv" or "parquet" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, Parquet:
		return f, nil
	default:
		return "", apperrors.Configf("export.ParseFormat", "unsupported format: %s", s)
	}
}
