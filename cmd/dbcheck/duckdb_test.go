//go:build cgo

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunAgainstDuckDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "escuela.duckdb")
	path := writeConfig(t, fmt.Sprintf(
		`{"name_server":"local","database":%q,"username":"operador","password":"","controlador_odbc":"duckdb"}`, dbPath))

	opts, err := initFlags([]string{"-config=" + path}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := run(context.Background(), opts, &out, io.Discard); code != 0 {
		t.Fatalf("run() = %d, want 0\n%s", code, out.String())
	}
	for _, want := range []string{"✓ Conexión exitosa", "Tablas (0)", "✓ Todas las verificaciones completadas"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}

	opts, _ = initFlags([]string{"-config=" + path, "-inspect=Alumno"}, io.Discard)
	out.Reset()
	if code := run(context.Background(), opts, &out, io.Discard); code != 1 {
		t.Errorf("inspect of a missing table: run() = %d, want 1", code)
	}
}
