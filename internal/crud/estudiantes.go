package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// Estudiante is a row of the Estudiantes table. The id is chosen by the
// operator, not the database.
type Estudiante struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

const (
	estudianteColumns = "IDEstudiante, NombreEstudiante, ApellidoEstudiante, Email, Telefono"

	insertEstudianteSQL = "INSERT INTO Estudiantes (" + estudianteColumns + ") VALUES (?, ?, ?, ?, ?)"
	listEstudiantesSQL  = "SELECT " + estudianteColumns + " FROM Estudiantes ORDER BY IDEstudiante"
	getEstudianteSQL    = "SELECT " + estudianteColumns + " FROM Estudiantes WHERE IDEstudiante = ?"
	updateEmailSQL      = "UPDATE Estudiantes SET Email = ? WHERE IDEstudiante = ?"
	deleteEstudianteSQL = "DELETE FROM Estudiantes WHERE IDEstudiante = ?"
)

// EstudianteStore runs direct parameterized SQL against Estudiantes.
type EstudianteStore struct {
	exec Executor
}

// NewEstudianteStore creates a store over exec.
func NewEstudianteStore(exec Executor) *EstudianteStore {
	return &EstudianteStore{exec: exec}
}

// Insert adds e. A duplicate id surfaces as an integrity error.
func (s *EstudianteStore) Insert(ctx context.Context, e Estudiante) (Outcome, error) {
	e.Nombre = strings.TrimSpace(e.Nombre)
	e.Apellido = strings.TrimSpace(e.Apellido)
	if err := validateRecord(e); err != nil {
		return Outcome{}, err
	}

	n, err := s.exec.ExecuteCommand(ctx, insertEstudianteSQL, e.ID, e.Nombre, e.Apellido, e.Email, e.Telefono)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: Applied, RowsAffected: n, ID: e.ID}, nil
}

// List returns every estudiante ordered by id.
func (s *EstudianteStore) List(ctx context.Context) ([]Estudiante, error) {
	rs, err := s.exec.ExecuteQuery(ctx, listEstudiantesSQL)
	if err != nil {
		return nil, err
	}
	return decodeEstudiantes(rs)
}

// GetByID returns the estudiante with id and whether it exists.
func (s *EstudianteStore) GetByID(ctx context.Context, id int64) (Estudiante, bool, error) {
	rs, err := s.exec.ExecuteQuery(ctx, getEstudianteSQL, id)
	if err != nil {
		return Estudiante{}, false, err
	}

	records, err := decodeEstudiantes(rs)
	if err != nil || len(records) == 0 {
		return Estudiante{}, false, err
	}
	return records[0], true, nil
}

// UpdateEmail replaces the email of estudiante id. Other fields are kept.
func (s *EstudianteStore) UpdateEmail(ctx context.Context, id int64, email string) (Outcome, error) {
	n, err := s.exec.ExecuteCommand(ctx, updateEmailSQL, email, id)
	if err != nil {
		return Outcome{}, err
	}
	if n == 0 {
		return Outcome{Kind: NotFound, ID: id}, nil
	}
	return Outcome{Kind: Applied, RowsAffected: n, ID: id}, nil
}

// Delete removes estudiante id when confirmation is the affirmative answer.
// Any other answer cancels without touching the database.
func (s *EstudianteStore) Delete(ctx context.Context, id int64, confirmation string) (Outcome, error) {
	if !Confirmed(confirmation) {
		return Outcome{Kind: Cancelled, ID: id}, nil
	}

	n, err := s.exec.ExecuteCommand(ctx, deleteEstudianteSQL, id)
	if err != nil {
		return Outcome{}, err
	}
	if n == 0 {
		return Outcome{Kind: NotFound, ID: id}, nil
	}
	return Outcome{Kind: Applied, RowsAffected: n, ID: id}, nil
}

func decodeEstudiantes(rs *database.ResultSet) ([]Estudiante, error) {
	records := make([]Estudiante, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		id, err := row.Int64(0)
		if err != nil {
			return nil, apperrors.Query("crud.decodeEstudiantes", fmt.Errorf("invalid IDEstudiante: %w", err))
		}
		records = append(records, Estudiante{
			ID:       id,
			Nombre:   row.String(1),
			Apellido: row.String(2),
			Email:    row.String(3),
			Telefono: row.String(4),
		})
	}
	return records, nil
}
