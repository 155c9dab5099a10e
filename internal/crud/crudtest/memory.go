// Package crudtest provides an in-memory crud.Executor for store and menu
// tests.
package crudtest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/crud"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// ErrInjected is a ready-made failure for FailNext.
var ErrInjected = errors.New("injected failure")

var (
	estudianteColumns = []string{"IDEstudiante", "NombreEstudiante", "ApellidoEstudiante", "Email", "Telefono"}
	alumnoColumns     = []string{"IdAlumno", "Nombre", "Apellido", "FechaNacimiento", "LugarNacimiento", "Direccion", "TelefonoAlumno", "InfoEscolar", "InfoSalud"}
	statusColumns     = []string{"Resultado", "Mensaje"}
)

// Memory keeps Estudiantes rows and Alumno records in maps and understands
// the statements and procedures the stores issue. Every statement is
// recorded so tests can assert that nothing was sent.
type Memory struct {
	mu          sync.Mutex
	estudiantes map[int64]crud.Estudiante
	alumnos     map[int64]crud.Alumno
	nextAlumno  int64
	statements  []string
	failNext    error
}

var _ crud.Executor = (*Memory)(nil)

// NewMemory creates an empty in-memory database.
func NewMemory() *Memory {
	return &Memory{
		estudiantes: make(map[int64]crud.Estudiante),
		alumnos:     make(map[int64]crud.Alumno),
		nextAlumno:  1,
	}
}

// SeedEstudiante stores e directly, bypassing statement recording.
func (m *Memory) SeedEstudiante(e crud.Estudiante) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estudiantes[e.ID] = e
}

// SeedAlumno stores a with the next id and returns it.
func (m *Memory) SeedAlumno(a crud.Alumno) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextAlumno
	m.nextAlumno++
	m.alumnos[a.ID] = a
	return a.ID
}

// Estudiante returns the stored row for id.
func (m *Memory) Estudiante(id int64) (crud.Estudiante, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.estudiantes[id]
	return e, ok
}

// Alumno returns the stored record for id.
func (m *Memory) Alumno(id int64) (crud.Alumno, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alumnos[id]
	return a, ok
}

// Statements returns every statement or procedure name received so far.
func (m *Memory) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.statements...)
}

// FailNext makes the next call return err.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *Memory) record(statement string) error {
	m.statements = append(m.statements, statement)
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	return nil
}

// ExecuteCommand handles INSERT, UPDATE and DELETE on Estudiantes.
func (m *Memory) ExecuteCommand(ctx context.Context, statement string, args ...interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, apperrors.Command("crudtest.ExecuteCommand", err)
	}
	if err := m.record(statement); err != nil {
		return 0, err
	}

	switch verb(statement) {
	case "INSERT":
		id := toInt64(args[0])
		if _, exists := m.estudiantes[id]; exists {
			return 0, apperrors.Integrity("crudtest.ExecuteCommand", fmt.Errorf("duplicate key %d", id))
		}
		m.estudiantes[id] = crud.Estudiante{
			ID:       id,
			Nombre:   toString(args[1]).String,
			Apellido: toString(args[2]).String,
			Email:    toString(args[3]).String,
			Telefono: toString(args[4]).String,
		}
		return 1, nil

	case "UPDATE":
		id := toInt64(args[1])
		e, exists := m.estudiantes[id]
		if !exists {
			return 0, nil
		}
		e.Email = toString(args[0]).String
		m.estudiantes[id] = e
		return 1, nil

	case "DELETE":
		id := toInt64(args[0])
		if _, exists := m.estudiantes[id]; !exists {
			return 0, nil
		}
		delete(m.estudiantes, id)
		return 1, nil
	}

	return 0, apperrors.Command("crudtest.ExecuteCommand", fmt.Errorf("unsupported statement: %s", statement))
}

// ExecuteQuery handles SELECT on Estudiantes, by id when an argument is given.
func (m *Memory) ExecuteQuery(ctx context.Context, statement string, args ...interface{}) (*database.ResultSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Query("crudtest.ExecuteQuery", err)
	}
	if err := m.record(statement); err != nil {
		return nil, err
	}
	if verb(statement) != "SELECT" {
		return nil, apperrors.Query("crudtest.ExecuteQuery", fmt.Errorf("unsupported statement: %s", statement))
	}

	rs := &database.ResultSet{Columns: estudianteColumns, Rows: []database.Row{}}
	for _, id := range sortedKeys(m.estudiantes) {
		if len(args) > 0 && id != toInt64(args[0]) {
			continue
		}
		e := m.estudiantes[id]
		rs.Rows = append(rs.Rows, database.Row{e.ID, e.Nombre, e.Apellido, e.Email, e.Telefono})
	}
	return rs, nil
}

// ExecuteCall handles the Alumno write procedures.
func (m *Memory) ExecuteCall(ctx context.Context, procedure string, params []string, args ...interface{}) (*database.ResultSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Command("crudtest.ExecuteCall", err)
	}
	if len(params) != len(args) {
		return nil, apperrors.Command("crudtest.ExecuteCall", fmt.Errorf("%s expects %d arguments, got %d", procedure, len(params), len(args)))
	}
	if err := m.record(procedure); err != nil {
		return nil, err
	}

	switch procedure {
	case crud.ProcInsertar:
		a := crud.Alumno{
			ID:              m.nextAlumno,
			Nombre:          toString(args[0]).String,
			Apellido:        toString(args[1]).String,
			FechaNacimiento: toTime(args[2]),
			LugarNacimiento: toString(args[3]),
			Direccion:       toString(args[4]),
			Telefono:        toString(args[5]),
			InfoEscolar:     toString(args[6]),
			InfoSalud:       toString(args[7]),
		}
		m.alumnos[a.ID] = a
		m.nextAlumno++
		return status("SUCCESS", a.ID), nil

	case crud.ProcActualizar:
		id := toInt64(args[0])
		a, exists := m.alumnos[id]
		if !exists {
			return status("ERROR", "El alumno no existe"), nil
		}
		if v := toString(args[1]); v.Valid {
			a.Nombre = v.String
		}
		if v := toString(args[2]); v.Valid {
			a.Apellido = v.String
		}
		if v := toTime(args[3]); v.Valid {
			a.FechaNacimiento = v
		}
		for i, field := range []*sql.NullString{&a.LugarNacimiento, &a.Direccion, &a.Telefono, &a.InfoEscolar, &a.InfoSalud} {
			if v := toString(args[4+i]); v.Valid {
				*field = v
			}
		}
		m.alumnos[id] = a
		return status("SUCCESS", "Alumno actualizado correctamente"), nil

	case crud.ProcEliminar:
		id := toInt64(args[0])
		if _, exists := m.alumnos[id]; !exists {
			return status("ERROR", "El alumno no existe"), nil
		}
		delete(m.alumnos, id)
		return status("SUCCESS", "Alumno eliminado correctamente"), nil
	}

	return nil, apperrors.Command("crudtest.ExecuteCall", fmt.Errorf("unknown procedure %s", procedure))
}

// QueryProcedure handles the Alumno read procedures.
func (m *Memory) QueryProcedure(ctx context.Context, procedure string, params []string, args ...interface{}) (*database.ResultSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Query("crudtest.QueryProcedure", err)
	}
	if len(params) != len(args) {
		return nil, apperrors.Query("crudtest.QueryProcedure", fmt.Errorf("%s expects %d arguments, got %d", procedure, len(params), len(args)))
	}
	if err := m.record(procedure); err != nil {
		return nil, err
	}

	switch procedure {
	case crud.ProcObtenerTodos:
		return m.alumnoRows(func(crud.Alumno) bool { return true }), nil

	case crud.ProcObtenerPorID:
		id := toInt64(args[0])
		return m.alumnoRows(func(a crud.Alumno) bool { return a.ID == id }), nil

	case crud.ProcBuscar:
		term := strings.ToLower(toString(args[0]).String)
		return m.alumnoRows(func(a crud.Alumno) bool {
			return strings.Contains(strings.ToLower(a.Nombre), term) ||
				strings.Contains(strings.ToLower(a.Apellido), term)
		}), nil

	case crud.ProcEstadisticas:
		return m.stats(), nil
	}

	return nil, apperrors.Query("crudtest.QueryProcedure", fmt.Errorf("unknown procedure %s", procedure))
}

func (m *Memory) alumnoRows(match func(crud.Alumno) bool) *database.ResultSet {
	rs := &database.ResultSet{Columns: alumnoColumns, Rows: []database.Row{}}
	for _, id := range sortedKeys(m.alumnos) {
		a := m.alumnos[id]
		if !match(a) {
			continue
		}
		rs.Rows = append(rs.Rows, database.Row{
			a.ID,
			a.Nombre,
			a.Apellido,
			nullable(a.FechaNacimiento),
			nullable(a.LugarNacimiento),
			nullable(a.Direccion),
			nullable(a.Telefono),
			nullable(a.InfoEscolar),
			nullable(a.InfoSalud),
		})
	}
	return rs
}

func (m *Memory) stats() *database.ResultSet {
	var (
		years      = make(map[int]bool)
		places     = make(map[string]bool)
		oldest     *crud.Alumno
		youngest   *crud.Alumno
		withPhone  int64
		withSchool int64
		withHealth int64
	)

	for _, id := range sortedKeys(m.alumnos) {
		a := m.alumnos[id]
		if a.FechaNacimiento.Valid {
			years[a.FechaNacimiento.Time.Year()] = true
			if oldest == nil || a.FechaNacimiento.Time.Before(oldest.FechaNacimiento.Time) {
				oldest = &a
			}
			if youngest == nil || a.FechaNacimiento.Time.After(youngest.FechaNacimiento.Time) {
				youngest = &a
			}
		}
		if a.LugarNacimiento.Valid {
			places[a.LugarNacimiento.String] = true
		}
		if a.Telefono.Valid {
			withPhone++
		}
		if a.InfoEscolar.Valid {
			withSchool++
		}
		if a.InfoSalud.Valid {
			withHealth++
		}
	}

	name := func(a *crud.Alumno) interface{} {
		if a == nil {
			return nil
		}
		return a.FullName()
	}

	return &database.ResultSet{
		Columns: []string{"TotalAlumnos", "AniosNacimiento", "MasViejo", "MasJoven", "LugaresNacimiento", "ConTelefono", "ConInfoEscolar", "ConInfoSalud"},
		Rows: []database.Row{{
			int64(len(m.alumnos)),
			int64(len(years)),
			name(oldest),
			name(youngest),
			int64(len(places)),
			withPhone,
			withSchool,
			withHealth,
		}},
	}
}

func status(result string, message interface{}) *database.ResultSet {
	return &database.ResultSet{
		Columns: statusColumns,
		Rows:    []database.Row{{result, message}},
	}
}

func verb(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func nullable(v driver.Valuer) interface{} {
	val, _ := v.Value()
	return val
}

func unwrap(arg interface{}) interface{} {
	if v, ok := arg.(driver.Valuer); ok {
		val, err := v.Value()
		if err != nil {
			return nil
		}
		return val
	}
	return arg
}

func toInt64(arg interface{}) int64 {
	switch v := unwrap(arg).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	}
	return 0
}

func toString(arg interface{}) sql.NullString {
	switch v := unwrap(arg).(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: v, Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(v), Valid: true}
	}
}

func toTime(arg interface{}) sql.NullTime {
	if t, ok := unwrap(arg).(time.Time); ok {
		return sql.NullTime{Time: t, Valid: true}
	}
	return sql.NullTime{}
}
