package export

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gerhard-ee/sqlcrud/internal/crud"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// Parquet rows. Optional columns are pointers so NULL survives the round
// trip; dates are days since the Unix epoch.
type estudianteRow struct {
	ID       int64  `parquet:"name=id, type=INT64"`
	Nombre   string `parquet:"name=nombre, type=BYTE_ARRAY, convertedtype=UTF8"`
	Apellido string `parquet:"name=apellido, type=BYTE_ARRAY, convertedtype=UTF8"`
	Email    string `parquet:"name=email, type=BYTE_ARRAY, convertedtype=UTF8"`
	Telefono string `parquet:"name=telefono, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type alumnoRow struct {
	ID              int64   `parquet:"name=id, type=INT64"`
	Nombre          string  `parquet:"name=nombre, type=BYTE_ARRAY, convertedtype=UTF8"`
	Apellido        string  `parquet:"name=apellido, type=BYTE_ARRAY, convertedtype=UTF8"`
	FechaNacimiento *int32  `parquet:"name=fecha_nacimiento, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	LugarNacimiento *string `parquet:"name=lugar_nacimiento, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Direccion       *string `parquet:"name=direccion, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Telefono        *string `parquet:"name=telefono, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	InfoEscolar     *string `parquet:"name=info_escolar, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	InfoSalud       *string `parquet:"name=info_salud, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

var (
	estudianteHeader = []string{"id", "nombre", "apellido", "email", "telefono"}
	alumnoHeader     = []string{"id", "nombre", "apellido", "fecha_nacimiento", "lugar_nacimiento", "direccion", "telefono", "info_escolar", "info_salud"}
)

func newEstudianteRow(e crud.Estudiante) estudianteRow {
	return estudianteRow{ID: e.ID, Nombre: e.Nombre, Apellido: e.Apellido, Email: e.Email, Telefono: e.Telefono}
}

func (r estudianteRow) record() []string {
	return []string{strconv.FormatInt(r.ID, 10), r.Nombre, r.Apellido, r.Email, r.Telefono}
}

func newAlumnoRow(a crud.Alumno) alumnoRow {
	return alumnoRow{
		ID:              a.ID,
		Nombre:          a.Nombre,
		Apellido:        a.Apellido,
		FechaNacimiento: epochDays(a.FechaNacimiento),
		LugarNacimiento: stringPtr(a.LugarNacimiento),
		Direccion:       stringPtr(a.Direccion),
		Telefono:        stringPtr(a.Telefono),
		InfoEscolar:     stringPtr(a.InfoEscolar),
		InfoSalud:       stringPtr(a.InfoSalud),
	}
}

// record renders NULL as an empty cell.
func (r alumnoRow) record() []string {
	fecha := ""
	if r.FechaNacimiento != nil {
		fecha = fromEpochDays(*r.FechaNacimiento).Format(database.DateLayout)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Nombre,
		r.Apellido,
		fecha,
		deref(r.LugarNacimiento),
		deref(r.Direccion),
		deref(r.Telefono),
		deref(r.InfoEscolar),
		deref(r.InfoSalud),
	}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func epochDays(t sql.NullTime) *int32 {
	if !t.Valid {
		return nil
	}
	y, m, d := t.Time.Date()
	days := int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
	return &days
}

func fromEpochDays(days int32) time.Time {
	return time.Unix(int64(days)*86400, 0).UTC()
}
