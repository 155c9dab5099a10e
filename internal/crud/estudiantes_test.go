package crud_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/crud"
	"github.com/gerhard-ee/sqlcrud/internal/crud/crudtest"
	"github.com/gerhard-ee/sqlcrud/internal/database"
	"github.com/gerhard-ee/sqlcrud/internal/logger"
)

var ana = crud.Estudiante{ID: 101, Nombre: "Ana", Apellido: "Lopez", Email: "a@x.com", Telefono: "555-1"}

func TestEstudianteInsertThenGet(t *testing.T) {
	ctx := context.Background()
	store := crud.NewEstudianteStore(crudtest.NewMemory())

	out, err := store.Insert(ctx, ana)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if out.Kind != crud.Applied || out.RowsAffected != 1 {
		t.Errorf("Insert() outcome = %+v", out)
	}

	got, found, err := store.GetByID(ctx, 101)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !found {
		t.Fatal("GetByID() did not find inserted record")
	}
	if diff := cmp.Diff(ana, got); diff != "" {
		t.Errorf("GetByID() mismatch (-want +got):\n%s", diff)
	}
}

func TestEstudianteInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	mem := crudtest.NewMemory()
	mem.SeedEstudiante(ana)
	store := crud.NewEstudianteStore(mem)

	_, err := store.Insert(ctx, ana)
	if !errors.Is(err, apperrors.ErrIntegrity) {
		t.Fatalf("Insert() error = %v, want integrity error", err)
	}
}

func TestEstudianteInsertValidation(t *testing.T) {
	tests := []struct {
		name    string
		record  crud.Estudiante
		message string
	}{
		{"missing nombre", crud.Estudiante{ID: 1, Apellido: "Lopez"}, crud.MsgNameRequired},
		{"missing apellido", crud.Estudiante{ID: 1, Nombre: "Ana"}, crud.MsgNameRequired},
		{"blank nombre", crud.Estudiante{ID: 1, Nombre: "   ", Apellido: "Lopez"}, crud.MsgNameRequired},
		{"blank apellido", crud.Estudiante{ID: 1, Nombre: "Ana", Apellido: "\t"}, crud.MsgNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := crudtest.NewMemory()
			store := crud.NewEstudianteStore(mem)

			_, err := store.Insert(context.Background(), tt.record)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("Insert() error = %v, want validation error", err)
			}
			if got := apperrors.Message(err); got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
			if n := len(mem.Statements()); n != 0 {
				t.Errorf("%d statements issued, want none", n)
			}
		})
	}
}

func TestEstudianteFreeTextEmail(t *testing.T) {
	for i, email := range []string{"sin correo", "ana@escuela", "N/A", ""} {
		t.Run(email, func(t *testing.T) {
			ctx := context.Background()
			store := crud.NewEstudianteStore(crudtest.NewMemory())
			want := crud.Estudiante{ID: int64(i + 1), Nombre: "Ana", Apellido: "Lopez", Email: email}

			if _, err := store.Insert(ctx, want); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			got, found, err := store.GetByID(ctx, want.ID)
			if err != nil || !found {
				t.Fatalf("GetByID() = %v, %v", found, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("GetByID() mismatch (-want +got):\n%s", diff)
			}

			if _, err := store.UpdateEmail(ctx, want.ID, "otro texto"); err != nil {
				t.Errorf("UpdateEmail() error = %v", err)
			}
		})
	}
}

func TestEstudianteInsertTrimsNames(t *testing.T) {
	ctx := context.Background()
	store := crud.NewEstudianteStore(crudtest.NewMemory())

	if _, err := store.Insert(ctx, crud.Estudiante{ID: 7, Nombre: "  Ana ", Apellido: " Lopez\t"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	got, _, err := store.GetByID(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got.Nombre != "Ana" || got.Apellido != "Lopez" {
		t.Errorf("stored names = %q %q, want trimmed", got.Nombre, got.Apellido)
	}
}

func TestEstudianteListOrderedByID(t *testing.T) {
	mem := crudtest.NewMemory()
	for _, id := range []int64{30, 10, 20} {
		mem.SeedEstudiante(crud.Estudiante{ID: id, Nombre: "N", Apellido: "A"})
	}
	store := crud.NewEstudianteStore(mem)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var ids []int64
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]int64{10, 20, 30}, ids); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}
}

func TestEstudianteUpdateEmail(t *testing.T) {
	ctx := context.Background()
	mem := crudtest.NewMemory()
	mem.SeedEstudiante(ana)
	store := crud.NewEstudianteStore(mem)

	out, err := store.UpdateEmail(ctx, 101, "nuevo@correo.com")
	if err != nil {
		t.Fatalf("UpdateEmail() error = %v", err)
	}
	if out.Kind != crud.Applied {
		t.Errorf("UpdateEmail() kind = %v, want applied", out.Kind)
	}

	want := ana
	want.Email = "nuevo@correo.com"
	got, _ := mem.Estudiante(101)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record after update (-want +got):\n%s", diff)
	}
}

func TestEstudianteUpdateMissing(t *testing.T) {
	mem := crudtest.NewMemory()
	store := crud.NewEstudianteStore(mem)

	out, err := store.UpdateEmail(context.Background(), 999, "x@y.com")
	if err != nil {
		t.Fatalf("UpdateEmail() error = %v", err)
	}
	if out.Kind != crud.NotFound {
		t.Errorf("UpdateEmail() kind = %v, want not found", out.Kind)
	}
}

func TestEstudianteDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		mem := crudtest.NewMemory()
		mem.SeedEstudiante(ana)
		store := crud.NewEstudianteStore(mem)

		out, err := store.Delete(ctx, 101, " S ")
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if out.Kind != crud.Applied {
			t.Errorf("Delete() kind = %v, want applied", out.Kind)
		}
		if _, exists := mem.Estudiante(101); exists {
			t.Error("record still present after delete")
		}

		// A second delete of the same id is a status, not a fault.
		out, err = store.Delete(ctx, 101, "s")
		if err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if out.Kind != crud.NotFound {
			t.Errorf("second Delete() kind = %v, want not found", out.Kind)
		}
	})

	for _, answer := range []string{"n", "", "si", "yes"} {
		t.Run("declined "+answer, func(t *testing.T) {
			mem := crudtest.NewMemory()
			mem.SeedEstudiante(ana)
			store := crud.NewEstudianteStore(mem)

			out, err := store.Delete(ctx, 101, answer)
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if out.Kind != crud.Cancelled {
				t.Errorf("Delete() kind = %v, want cancelled", out.Kind)
			}
			if n := len(mem.Statements()); n != 0 {
				t.Errorf("%d statements issued, want none", n)
			}
			if _, exists := mem.Estudiante(101); !exists {
				t.Error("record removed without confirmation")
			}
		})
	}
}

func TestEstudianteStoreStatements(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	session := database.NewSession(sqlx.NewDb(mockDB, "sqlmock"), database.SQLServer, logger.Discard())
	store := crud.NewEstudianteStore(session)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Estudiantes (IDEstudiante, NombreEstudiante, ApellidoEstudiante, Email, Telefono) VALUES (@p1, @p2, @p3, @p4, @p5)").
		WithArgs(int64(101), "Ana", "Lopez", "a@x.com", "555-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT IDEstudiante, NombreEstudiante, ApellidoEstudiante, Email, Telefono FROM Estudiantes ORDER BY IDEstudiante").
		WillReturnRows(sqlmock.NewRows([]string{"IDEstudiante", "NombreEstudiante", "ApellidoEstudiante", "Email", "Telefono"}).
			AddRow(int64(101), "Ana", "Lopez", "a@x.com", "555-1"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM Estudiantes WHERE IDEstudiante = @p1").
		WithArgs(int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if _, err := store.Insert(ctx, ana); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]crud.Estudiante{ana}, list); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	out, err := store.Delete(ctx, 999, "s")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if out.Kind != crud.NotFound {
		t.Errorf("Delete() kind = %v, want not found", out.Kind)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
