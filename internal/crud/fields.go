package crud

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// Validation messages shown to the operator.
const (
	MsgInvalidID      = "El ID debe ser un número"
	MsgNameRequired   = "Nombre y Apellido son obligatorios"
	MsgInvalidDate    = "Formato de fecha inválido. Use YYYY-MM-DD"
	MsgSearchRequired = "Debe ingresar un término de búsqueda"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateRecord maps validator failures onto operator facing messages.
func validateRecord(record interface{}) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation("record", err.Error())
	}

	first := verrs[0]
	switch first.Tag() {
	case "required":
		return apperrors.Validation(first.Field(), MsgNameRequired)
	default:
		return apperrors.Validation(first.Field(), fmt.Sprintf("Valor inválido para %s", first.Field()))
	}
}

// ParseID parses an operator supplied record id.
func ParseID(field, input string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, apperrors.Validation(field, MsgInvalidID)
	}
	return id, nil
}

// OptionalString collapses blank input to NULL.
func OptionalString(input string) sql.NullString {
	s := strings.TrimSpace(input)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// OptionalDate parses YYYY-MM-DD; blank input is NULL.
func OptionalDate(field, input string) (sql.NullTime, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(database.DateLayout, s)
	if err != nil {
		return sql.NullTime{}, apperrors.Validation(field, MsgInvalidDate)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// Confirmed reports whether the operator answered the affirmative "s".
func Confirmed(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "s"
}

// FormatDate renders an optional date, "N/A" when absent.
func FormatDate(t sql.NullTime) string {
	if !t.Valid {
		return "N/A"
	}
	return t.Time.Format(database.DateLayout)
}

// OrNA renders an optional string, "N/A" when absent.
func OrNA(s sql.NullString) string {
	if !s.Valid || s.String == "" {
		return "N/A"
	}
	return s.String
}
