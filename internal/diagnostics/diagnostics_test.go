package diagnostics

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/config"
	"github.com/gerhard-ee/sqlcrud/internal/database"
	"github.com/gerhard-ee/sqlcrud/internal/logger"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newMockSession(t *testing.T, dialect *database.Dialect) (*database.Session, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	return database.NewSession(sqlx.NewDb(mockDB, "sqlmock"), dialect, logger.Discard()), mock
}

var testConfig = &config.Config{
	NameServer:      "db.local",
	Database:        "Escuela",
	Username:        "sa",
	Password:        "secret",
	ControladorODBC: "ODBC Driver 17 for SQL Server",
}

func TestCheckConnection(t *testing.T) {
	s, mock := newMockSession(t, database.SQLServer)
	cat := database.SQLServer.Catalog
	serverTime := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(cat.Version).WillReturnRows(
		sqlmock.NewRows([]string{""}).AddRow("Microsoft SQL Server 2019 (RTM)\n\tCopyright (C) 2019"))
	mock.ExpectQuery(cat.Tables).WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME"}).
			AddRow("dbo", "Alumno").
			AddRow("dbo", "Estudiantes"))
	mock.ExpectQuery(cat.Procedures).WillReturnRows(
		sqlmock.NewRows([]string{"ROUTINE_SCHEMA", "ROUTINE_NAME"}).AddRow("dbo", "sp_InsertarAlumno"))
	mock.ExpectQuery("SELECT TOP 1 * FROM [dbo].[Alumno]").WillReturnRows(
		sqlmock.NewRows([]string{"IdAlumno"}).AddRow(int64(1)))
	mock.ExpectQuery(cat.Identity).WillReturnRows(
		sqlmock.NewRows([]string{"", "", ""}).AddRow("Escuela", "sa", serverTime))

	report, err := CheckConnection(context.Background(), s, testConfig)
	if err != nil {
		t.Fatalf("CheckConnection() error = %v", err)
	}

	want := &ConnectionReport{
		Connection: testConfig.Redacted(),
		Engine:     "SQL Server",
		Version:    "Microsoft SQL Server 2019 (RTM)",
		Tables:     []ObjectName{{"dbo", "Alumno"}, {"dbo", "Estudiantes"}},
		Procedures: []ObjectName{{"dbo", "sp_InsertarAlumno"}},
		ProbeTable: "dbo.Alumno",
		ProbeRows:  1,
		Identity:   &Identity{Database: "Escuela", User: "sa", ServerTime: "2024-05-01 10:30:00"},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if _, ok := report.Connection["password"]; ok {
		t.Error("report exposes the password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCheckConnectionStopsAtFirstFailure(t *testing.T) {
	s, mock := newMockSession(t, database.SQLServer)
	cat := database.SQLServer.Catalog

	mock.ExpectQuery(cat.Version).WillReturnRows(sqlmock.NewRows([]string{""}).AddRow("15.0"))
	mock.ExpectQuery(cat.Tables).WillReturnError(errors.New("permission denied"))

	report, err := CheckConnection(context.Background(), s, testConfig)
	if !errors.Is(err, apperrors.ErrQuery) {
		t.Fatalf("CheckConnection() error = %v, want query error", err)
	}
	if report.Version != "15.0" || report.Tables != nil {
		t.Errorf("partial report = %+v", report)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCheckConnectionSkipsUnsupportedCatalog(t *testing.T) {
	s, mock := newMockSession(t, database.DuckDB)
	cat := database.DuckDB.Catalog

	mock.ExpectQuery(cat.Version).WillReturnRows(sqlmock.NewRows([]string{""}).AddRow("v0.9.2"))
	mock.ExpectQuery(cat.Tables).WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name"}))
	mock.ExpectQuery(cat.Identity).WillReturnRows(
		sqlmock.NewRows([]string{"", "", ""}).AddRow("memory", nil, "2024-05-01"))

	report, err := CheckConnection(context.Background(), s, testConfig)
	if err != nil {
		t.Fatalf("CheckConnection() error = %v", err)
	}
	if report.Procedures != nil || report.ProbeTable != "" {
		t.Errorf("unexpected procedures or probe: %+v", report)
	}
	if report.Identity.User != "N/A" {
		t.Errorf("NULL user rendered as %q", report.Identity.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInspectTable(t *testing.T) {
	s, mock := newMockSession(t, database.Postgres)
	cat := database.Postgres.Catalog

	mock.ExpectQuery(sqlx.Rebind(sqlx.DOLLAR, cat.Columns)).
		WithArgs("public", "Alumno").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "len", "is_nullable", "identity", "default"}).
			AddRow("IdAlumno", "integer", nil, "NO", int64(1), nil).
			AddRow("Nombre", "character varying", int64(50), "NO", int64(0), nil).
			AddRow("Telefono", "character varying", int64(20), "YES", int64(0), nil))
	mock.ExpectQuery(sqlx.Rebind(sqlx.DOLLAR, cat.Keys)).
		WithArgs("public", "Alumno").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "column_name"}).AddRow("alumno_pkey", "IdAlumno"))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "public"."Alumno"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT * FROM "public"."Alumno" LIMIT 3`).
		WillReturnRows(sqlmock.NewRows([]string{"IdAlumno", "Nombre", "Telefono"}).
			AddRow(int64(1), "Lucia", nil).
			AddRow(int64(2), "Mateo", "099"))

	report, err := InspectTable(context.Background(), s, "", "Alumno")
	if err != nil {
		t.Fatalf("InspectTable() error = %v", err)
	}

	wantColumns := []Column{
		{Name: "IdAlumno", Type: "integer", MaxLength: "N/A", Identity: true, Default: "N/A"},
		{Name: "Nombre", Type: "character varying", MaxLength: "50", Default: "N/A"},
		{Name: "Telefono", Type: "character varying", MaxLength: "20", Nullable: true, Default: "N/A"},
	}
	if diff := cmp.Diff(wantColumns, report.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if report.RowCount != 2 || len(report.Sample.Rows) != 2 || len(report.Keys) != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Nullable() != 1 || report.IdentityColumn() != "IdAlumno" {
		t.Errorf("summary: nullable %d, identity %q", report.Nullable(), report.IdentityColumn())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInspectMissingTable(t *testing.T) {
	s, mock := newMockSession(t, database.DuckDB)

	mock.ExpectQuery(database.DuckDB.Catalog.Columns).
		WithArgs("main", "Nada").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	_, err := InspectTable(context.Background(), s, "", "Nada")
	if !errors.Is(err, apperrors.ErrQuery) || !strings.Contains(err.Error(), "main.Nada does not exist") {
		t.Errorf("InspectTable() error = %v", err)
	}
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Connection(&ConnectionReport{
		Connection: testConfig.Redacted(),
		Engine:     "SQL Server",
		Version:    "15.0",
		Tables:     []ObjectName{{"dbo", "Alumno"}},
		Procedures: []ObjectName{},
		ProbeTable: "dbo.Alumno",
		ProbeRows:  1,
	})
	p.Table(&TableReport{
		Table:    ObjectName{"dbo", "Alumno"},
		Columns:  []Column{{Name: "IdAlumno", Type: "int", MaxLength: "N/A", Identity: true, Default: "N/A"}},
		RowCount: 0,
		Sample:   &database.ResultSet{Columns: []string{"IdAlumno"}, Rows: []database.Row{}},
	})

	got := out.String()
	for _, want := range []string{
		"name_server:      db.local",
		"  - dbo.Alumno",
		"Procedimientos almacenados (0)",
		"✓ SELECT sobre dbo.Alumno: 1 fila(s) leída(s)",
		"(tabla vacía)",
		"Columna identidad: IdAlumno",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "secret") {
		t.Error("password printed")
	}
}
