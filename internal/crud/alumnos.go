package crud

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// Alumno is a row of the Alumno table. The id is assigned by
// sp_InsertarAlumno.
type Alumno struct {
	ID              int64          `json:"id"`
	Nombre          string         `json:"nombre" validate:"required"`
	Apellido        string         `json:"apellido" validate:"required"`
	FechaNacimiento sql.NullTime   `json:"fecha_nacimiento"`
	LugarNacimiento sql.NullString `json:"lugar_nacimiento"`
	Direccion       sql.NullString `json:"direccion"`
	Telefono        sql.NullString `json:"telefono"`
	InfoEscolar     sql.NullString `json:"info_escolar"`
	InfoSalud       sql.NullString `json:"info_salud"`
}

// FullName is "Nombre Apellido".
func (a Alumno) FullName() string {
	return a.Nombre + " " + a.Apellido
}

// AlumnoChanges holds an update. Invalid (NULL) fields keep their current
// value.
type AlumnoChanges struct {
	Nombre          sql.NullString
	Apellido        sql.NullString
	FechaNacimiento sql.NullTime
	LugarNacimiento sql.NullString
	Direccion       sql.NullString
	Telefono        sql.NullString
	InfoEscolar     sql.NullString
	InfoSalud       sql.NullString
}

// Estadisticas is the single row returned by sp_EstadisticasAlumnos.
type Estadisticas struct {
	Total             int64
	AniosNacimiento   int64
	MasViejo          sql.NullString
	MasJoven          sql.NullString
	LugaresNacimiento int64
	ConTelefono       int64
	ConInfoEscolar    int64
	ConInfoSalud      int64
}

// Stored procedures and their parameter names.
const (
	ProcInsertar     = "sp_InsertarAlumno"
	ProcObtenerTodos = "sp_ObtenerAlumnos"
	ProcObtenerPorID = "sp_ObtenerAlumnoPorID"
	ProcBuscar       = "sp_BuscarAlumnosPorNombre"
	ProcActualizar   = "sp_ActualizarAlumno"
	ProcEliminar     = "sp_EliminarAlumno"
	ProcEstadisticas = "sp_EstadisticasAlumnos"
)

var (
	alumnoFieldParams = []string{
		"Nombre",
		"Apellido",
		"FechaNacimiento",
		"LugarNacimiento",
		"Direccion",
		"TelefonoAlumno",
		"InfoEscolar",
		"InfoSalud",
	}
	idParam     = []string{"IdAlumno"}
	updateParam = append([]string{"IdAlumno"}, alumnoFieldParams...)
	searchParam = []string{"NombreBusqueda"}
)

// AlumnoStore goes through the Alumno stored procedures only.
type AlumnoStore struct {
	exec Executor
}

// NewAlumnoStore creates a store over exec.
func NewAlumnoStore(exec Executor) *AlumnoStore {
	return &AlumnoStore{exec: exec}
}

// Insert registers a. The outcome carries the id the database assigned.
func (s *AlumnoStore) Insert(ctx context.Context, a Alumno) (Outcome, error) {
	a.Nombre = strings.TrimSpace(a.Nombre)
	a.Apellido = strings.TrimSpace(a.Apellido)
	if err := validateRecord(a); err != nil {
		return Outcome{}, err
	}

	rs, err := s.exec.ExecuteCall(ctx, ProcInsertar, alumnoFieldParams,
		a.Nombre,
		a.Apellido,
		a.FechaNacimiento,
		a.LugarNacimiento,
		a.Direccion,
		a.Telefono,
		a.InfoEscolar,
		a.InfoSalud,
	)
	if err != nil {
		return Outcome{}, err
	}
	return DecodeStatus(rs).Outcome(0), nil
}

// List returns every alumno in the order the procedure produces.
func (s *AlumnoStore) List(ctx context.Context) ([]Alumno, error) {
	rs, err := s.exec.QueryProcedure(ctx, ProcObtenerTodos, nil)
	if err != nil {
		return nil, err
	}
	return decodeAlumnos(rs)
}

// GetByID returns alumno id and whether it exists.
func (s *AlumnoStore) GetByID(ctx context.Context, id int64) (Alumno, bool, error) {
	rs, err := s.exec.QueryProcedure(ctx, ProcObtenerPorID, idParam, id)
	if err != nil {
		return Alumno{}, false, err
	}

	records, err := decodeAlumnos(rs)
	if err != nil || len(records) == 0 {
		return Alumno{}, false, err
	}
	return records[0], true, nil
}

// Search finds alumnos by nombre or apellido. Matching is up to the
// procedure.
func (s *AlumnoStore) Search(ctx context.Context, term string) ([]Alumno, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.Validation("nombre_busqueda", MsgSearchRequired)
	}

	rs, err := s.exec.QueryProcedure(ctx, ProcBuscar, searchParam, term)
	if err != nil {
		return nil, err
	}
	return decodeAlumnos(rs)
}

// Update applies changes to alumno id after checking it exists.
func (s *AlumnoStore) Update(ctx context.Context, id int64, changes AlumnoChanges) (Outcome, error) {
	if _, found, err := s.GetByID(ctx, id); err != nil {
		return Outcome{}, err
	} else if !found {
		return Outcome{Kind: NotFound, ID: id}, nil
	}

	rs, err := s.exec.ExecuteCall(ctx, ProcActualizar, updateParam,
		id,
		changes.Nombre,
		changes.Apellido,
		changes.FechaNacimiento,
		changes.LugarNacimiento,
		changes.Direccion,
		changes.Telefono,
		changes.InfoEscolar,
		changes.InfoSalud,
	)
	if err != nil {
		return Outcome{}, err
	}
	return DecodeStatus(rs).Outcome(id), nil
}

// Delete removes alumno id when confirmation is the affirmative answer.
func (s *AlumnoStore) Delete(ctx context.Context, id int64, confirmation string) (Outcome, error) {
	if !Confirmed(confirmation) {
		return Outcome{Kind: Cancelled, ID: id}, nil
	}

	if _, found, err := s.GetByID(ctx, id); err != nil {
		return Outcome{}, err
	} else if !found {
		return Outcome{Kind: NotFound, ID: id}, nil
	}

	rs, err := s.exec.ExecuteCall(ctx, ProcEliminar, idParam, id)
	if err != nil {
		return Outcome{}, err
	}
	return DecodeStatus(rs).Outcome(id), nil
}

// Stats returns the aggregate row, false when the procedure returned none.
func (s *AlumnoStore) Stats(ctx context.Context) (Estadisticas, bool, error) {
	rs, err := s.exec.QueryProcedure(ctx, ProcEstadisticas, nil)
	if err != nil {
		return Estadisticas{}, false, err
	}
	if rs.Empty() {
		return Estadisticas{}, false, nil
	}

	row := rs.Rows[0]
	counts := make(map[int]int64, 6)
	for _, i := range []int{0, 1, 4, 5, 6, 7} {
		// SUM over an empty table is NULL.
		if row.Value(i) == nil {
			continue
		}
		n, err := row.Int64(i)
		if err != nil {
			return Estadisticas{}, false, apperrors.Query("crud.Stats", fmt.Errorf("invalid column %d: %w", i, err))
		}
		counts[i] = n
	}
	return Estadisticas{
		Total:             counts[0],
		AniosNacimiento:   counts[1],
		MasViejo:          row.NullString(2),
		MasJoven:          row.NullString(3),
		LugaresNacimiento: counts[4],
		ConTelefono:       counts[5],
		ConInfoEscolar:    counts[6],
		ConInfoSalud:      counts[7],
	}, true, nil
}

// decodeAlumnos expects the column order of the Alumno table: id, nombre,
// apellido, fecha, lugar, direccion, telefono, info escolar, info salud.
func decodeAlumnos(rs *database.ResultSet) ([]Alumno, error) {
	records := make([]Alumno, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		id, err := row.Int64(0)
		if err != nil {
			return nil, apperrors.Query("crud.decodeAlumnos", fmt.Errorf("invalid IdAlumno: %w", err))
		}
		records = append(records, Alumno{
			ID:              id,
			Nombre:          row.String(1),
			Apellido:        row.String(2),
			FechaNacimiento: row.NullTime(3),
			LugarNacimiento: row.NullString(4),
			Direccion:       row.NullString(5),
			Telefono:        row.NullString(6),
			InfoEscolar:     row.NullString(7),
			InfoSalud:       row.NullString(8),
		})
	}
	return records, nil
}
