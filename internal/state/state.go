// Package state records the progress of listing exports so an operator can
// see what was last written for each table and whether it finished.
package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

// Status of an export run.
type Status string

const (
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Run is the record kept for the latest export of a table.
type Run struct {
	Table     string    `json:"table"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Rows      int64     `json:"rows"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Manager stores one Run per table.
type Manager interface {
	// Get returns nil, nil when the table has no record.
	Get(ctx context.Context, table string) (*Run, error)
	Save(ctx context.Context, run *Run) error
	Delete(ctx context.Context, table string) error
	List(ctx context.Context) ([]*Run, error)
}

// Open picks a manager for source: "" keeps records in memory,
// k8s://<namespace> uses ConfigMaps in that namespace, anything else is a
// directory.
func Open(source string) (Manager, error) {
	switch {
	case source == "":
		return NewMemoryManager(), nil
	case strings.HasPrefix(source, ConfigMapScheme):
		namespace := strings.Trim(strings.TrimPrefix(source, ConfigMapScheme), "/")
		if namespace == "" {
			return nil, apperrors.Configf("state.Open", "invalid state source %q, expected %s<namespace>", source, ConfigMapScheme)
		}
		return NewInClusterManager(namespace)
	default:
		return NewFileManager(source)
	}
}

// MemoryManager keeps runs for the life of the process.
type MemoryManager struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryManager creates an empty manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{runs: make(map[string]Run)}
}

func (m *MemoryManager) Get(ctx context.Context, table string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[table]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (m *MemoryManager) Save(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.Table] = *run
	return nil
}

func (m *MemoryManager) Delete(ctx context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, table)
	return nil
}

func (m *MemoryManager) List(ctx context.Context) ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		run := run
		runs = append(runs, &run)
	}
	sortRuns(runs)
	return runs, nil
}
