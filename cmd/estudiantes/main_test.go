package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/gerhard-ee/sqlcrud/internal/export"
	"github.com/gerhard-ee/sqlcrud/internal/state"
)

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		wantHelp bool
	}{
		{name: "defaults", args: nil},
		{name: "config and logging", args: []string{"-config=prod.yaml", "-log-level=debug", "-log-format=json"}},
		{name: "csv export", args: []string{"-export=out.csv"}},
		{name: "parquet export", args: []string{"-export=out.parquet", "-format=parquet", "-state=runs"}},
		{name: "invalid format", args: []string{"-export=out.txt", "-format=txt"}, wantErr: true},
		{name: "invalid log format", args: []string{"-log-format=xml"}, wantErr: true},
		{name: "unknown flag", args: []string{"-table=Estudiantes"}, wantErr: true},
		{name: "export status", args: []string{"-export-status", "-state=runs"}},
		{name: "status without state", args: []string{"-export-status"}, wantErr: true},
		{name: "status with export", args: []string{"-export=out.csv", "-export-reset", "-state=runs"}, wantErr: true},
		{name: "help", args: []string{"-help"}, wantErr: true, wantHelp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := initFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("initFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantHelp && !errors.Is(err, flag.ErrHelp) {
				t.Errorf("initFlags() error = %v, want flag.ErrHelp", err)
			}
			if err == nil && opts.export.Enabled() && opts.export.Format == "" {
				t.Error("export enabled without a parsed format")
			}
		})
	}
}

func TestParquetFormatParsed(t *testing.T) {
	opts, err := initFlags([]string{"-export=x.parquet", "-format=PARQUET"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if opts.export.Format != export.Parquet {
		t.Errorf("Format = %q, want parquet", opts.export.Format)
	}
}

func TestRunMissingConfig(t *testing.T) {
	color.NoColor = true

	missing := filepath.Join(t.TempDir(), "missing.json")
	opts, err := initFlags([]string{"-config=" + missing}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	code := run(context.Background(), opts, strings.NewReader(""), &stdout, io.Discard)
	if code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), "✗ Error de configuración:") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunExportStatusNeedsNoDatabase(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "runs")
	states, err := state.NewFileManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"Estudiantes", "Alumno"} {
		if err := states.Save(ctx, &state.Run{Table: table, Path: table + ".csv", Format: "csv", Rows: 3, Status: state.Completed}); err != nil {
			t.Fatal(err)
		}
	}

	missing := filepath.Join(t.TempDir(), "missing.json")
	opts, err := initFlags([]string{"-config=" + missing, "-state=" + dir, "-export-reset", "-export-status"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	if code := run(ctx, opts, strings.NewReader(""), &stdout, io.Discard); code != 0 {
		t.Fatalf("run() = %d, want 0\n%s", code, stdout.String())
	}
	got := stdout.String()
	for _, want := range []string{"✓ Estado de exportación de Estudiantes eliminado", "Alumno.csv", "Total: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}

	if run, _ := states.Get(ctx, "Estudiantes"); run != nil {
		t.Errorf("Estudiantes run still recorded: %+v", run)
	}
}
