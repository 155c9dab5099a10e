package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

func sampleRun(table string) *Run {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &Run{
		Table:     table,
		Path:      "/tmp/" + table + ".csv",
		Format:    "csv",
		Status:    Running,
		StartedAt: started,
		UpdatedAt: started,
	}
}

// exerciseManager runs the same lifecycle against every implementation.
func exerciseManager(t *testing.T, m Manager) {
	t.Helper()
	ctx := context.Background()

	got, err := m.Get(ctx, "Estudiantes")
	if err != nil || got != nil {
		t.Fatalf("Get() on empty manager = %v, %v; want nil, nil", got, err)
	}

	run := sampleRun("Estudiantes")
	if err := m.Save(ctx, run); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	run.Status = Completed
	run.Rows = 42
	run.UpdatedAt = run.StartedAt.Add(time.Second)
	if err := m.Save(ctx, run); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	got, err = m.Get(ctx, "Estudiantes")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	if err := m.Save(ctx, sampleRun("Alumno")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	runs, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].Table != "Alumno" || runs[1].Table != "Estudiantes" {
		t.Errorf("List() = %+v, want Alumno then Estudiantes", runs)
	}

	if err := m.Delete(ctx, "Estudiantes"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Delete(ctx, "Estudiantes"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if got, _ := m.Get(ctx, "Estudiantes"); got != nil {
		t.Errorf("Get() after Delete() = %+v, want nil", got)
	}
}

func TestMemoryManager(t *testing.T) {
	exerciseManager(t, NewMemoryManager())
}

func TestMemoryManagerConcurrentSaves(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Save(ctx, sampleRun(fmt.Sprintf("table_%d", i)))
		}(i)
	}
	wg.Wait()

	runs, _ := m.List(ctx)
	if len(runs) != 10 {
		t.Errorf("List() returned %d runs, want 10", len(runs))
	}
}

func TestFileManager(t *testing.T) {
	m, err := NewFileManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileManager() error = %v", err)
	}
	exerciseManager(t, m)
}

func TestFileManagerIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewFileManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("List() = %+v, want none", runs)
	}
}

func TestFileManagerCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Alumno.state"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, _ := NewFileManager(dir)
	if _, err := m.Get(context.Background(), "Alumno"); err == nil {
		t.Error("Get() error = nil, want unmarshal failure")
	}
}

func TestKubernetesManager(t *testing.T) {
	exerciseManager(t, NewKubernetesManager(fake.NewSimpleClientset(), "default"))
}

func TestOpen(t *testing.T) {
	m, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	if _, ok := m.(*MemoryManager); !ok {
		t.Errorf("Open(\"\") = %T, want *MemoryManager", m)
	}

	m, err = Open(filepath.Join(t.TempDir(), "runs"))
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	if _, ok := m.(*FileManager); !ok {
		t.Errorf("Open(dir) = %T, want *FileManager", m)
	}

	if _, err := Open("k8s://"); !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("Open(k8s://) error = %v, want config error", err)
	}
}
