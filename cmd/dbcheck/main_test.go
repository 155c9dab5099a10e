package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"connection check", nil, nil},
		{"inspect", []string{"-inspect=Alumno"}, nil},
		{"inspect with schema", []string{"-inspect=Alumno", "-schema=dbo"}, nil},
		{"schema alone", []string{"-schema=dbo"}, apperrors.ErrConfig},
		{"help", []string{"-help"}, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := initFlags(tt.args, io.Discard)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("initFlags() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("initFlags() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunInvalidConfig(t *testing.T) {
	path := writeConfig(t, `{"name_server":"h","database":"d"}`)

	opts, err := initFlags([]string{"-config=" + path}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := run(context.Background(), opts, &out, io.Discard); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "✗ Error de configuración:") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunUnsupportedDriverShowsConnectionData(t *testing.T) {
	path := writeConfig(t, `{"name_server":"db.local","database":"Escuela","username":"sa","password":"secret","controlador_odbc":"Oracle"}`)

	opts, err := initFlags([]string{"-config=" + path}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := run(context.Background(), opts, &out, io.Discard); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	got := out.String()
	if !strings.Contains(got, "db.local") || strings.Contains(got, "secret") {
		t.Errorf("connection data not shown or password leaked:\n%s", got)
	}
}
