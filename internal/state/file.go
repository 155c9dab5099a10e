package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

const fileSuffix = ".state"

// FileManager writes each run as <dir>/<table>.state.
type FileManager struct {
	dir string
	mu  sync.RWMutex
}

// NewFileManager creates dir if needed.
func NewFileManager(dir string) (*FileManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Config("state.NewFileManager", fmt.Errorf("failed to create state directory: %w", err))
	}
	return &FileManager{dir: dir}, nil
}

func (m *FileManager) path(table string) string {
	return filepath.Join(m.dir, table+fileSuffix)
}

func (m *FileManager) Get(ctx context.Context, table string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return readRun(m.path(table))
}

func (m *FileManager) Save(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write then rename so a reader never sees a half written record.
	tmp := m.path(run.Table) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, m.path(run.Table)); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (m *FileManager) Delete(ctx context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path(table)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

func (m *FileManager) List(ctx context.Context) ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		run, err := readRun(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, run)
		}
	}
	sortRuns(runs)
	return runs, nil
}

func readRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &run, nil
}

func sortRuns(runs []*Run) {
	sort.Slice(runs, func(i, j int) bool { return runs[i].Table < runs[j].Table })
}
