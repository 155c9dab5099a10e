package crud

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"101", 101, false},
		{" 7 ", 7, false},
		{"-3", -3, false},
		{"abc", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseID("id", tt.input)
		if tt.wantErr {
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("ParseID(%q) error = %v, want validation error", tt.input, err)
			}
			if apperrors.Message(err) != MsgInvalidID {
				t.Errorf("ParseID(%q) message = %q", tt.input, apperrors.Message(err))
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseID(%q) = %d, %v; want %d", tt.input, got, err, tt.want)
		}
	}
}

func TestOptionalString(t *testing.T) {
	if got := OptionalString("   "); got.Valid {
		t.Errorf("blank input should be NULL, got %+v", got)
	}
	if got := OptionalString(" Quito "); got != (sql.NullString{String: "Quito", Valid: true}) {
		t.Errorf("OptionalString() = %+v", got)
	}
}

func TestOptionalDate(t *testing.T) {
	got, err := OptionalDate("fecha", "2012-03-04")
	if err != nil {
		t.Fatalf("OptionalDate() error = %v", err)
	}
	if !got.Valid || !got.Time.Equal(time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("OptionalDate() = %+v", got)
	}

	if got, err := OptionalDate("fecha", ""); err != nil || got.Valid {
		t.Errorf("blank date = %+v, %v; want NULL", got, err)
	}

	_, err = OptionalDate("fecha", "04/03/2012")
	if apperrors.Message(err) != MsgInvalidDate {
		t.Errorf("bad date error = %v", err)
	}
}

func TestConfirmed(t *testing.T) {
	for answer, want := range map[string]bool{"s": true, "S": true, " s\n": true, "n": false, "": false, "si": false} {
		if got := Confirmed(answer); got != want {
			t.Errorf("Confirmed(%q) = %v, want %v", answer, got, want)
		}
	}
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		name string
		rs   *database.ResultSet
		want ProcedureStatus
	}{
		{
			name: "id in second column",
			rs:   &database.ResultSet{Rows: []database.Row{{"SUCCESS", int64(12)}}},
			want: ProcedureStatus{OK: true, Message: "12", NewID: 12},
		},
		{
			name: "message and id",
			rs:   &database.ResultSet{Rows: []database.Row{{"SUCCESS", "Alumno insertado", int64(13)}}},
			want: ProcedureStatus{OK: true, Message: "Alumno insertado", NewID: 13},
		},
		{
			name: "error",
			rs:   &database.ResultSet{Rows: []database.Row{{"ERROR", "El alumno no existe"}}},
			want: ProcedureStatus{Message: "El alumno no existe"},
		},
		{
			name: "no rows",
			rs:   &database.ResultSet{},
			want: ProcedureStatus{Message: "Error desconocido"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeStatus(tt.rs); got != tt.want {
				t.Errorf("DecodeStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatusOutcome(t *testing.T) {
	if out := (ProcedureStatus{OK: true, NewID: 5}).Outcome(0); out.Kind != Applied || out.ID != 5 {
		t.Errorf("success outcome = %+v", out)
	}
	if out := (ProcedureStatus{Message: "duplicado"}).Outcome(3); out.Kind != Rejected || out.Message != "duplicado" || out.ID != 3 {
		t.Errorf("failure outcome = %+v", out)
	}
}

func TestDisplayHelpers(t *testing.T) {
	if FormatDate(sql.NullTime{}) != "N/A" {
		t.Error("FormatDate(NULL) should be N/A")
	}
	if OrNA(sql.NullString{}) != "N/A" {
		t.Error("OrNA(NULL) should be N/A")
	}
	if OrNA(sql.NullString{String: "x", Valid: true}) != "x" {
		t.Error("OrNA should pass values through")
	}
}
