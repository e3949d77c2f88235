package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/maltedev/marketplace-search/internal/models"
)

// Archive keeps completed runs in a JSON file, newest last.
type Archive struct {
	mu       sync.RWMutex
	runs     []*models.SearchRun
	filename string
	maxRuns  int
}

// NewArchive loads filename if it exists. maxRuns <= 0 keeps every run.
func NewArchive(filename string, maxRuns int) (*Archive, error) {
	a := &Archive{
		runs:     make([]*models.SearchRun, 0),
		filename: filename,
		maxRuns:  maxRuns,
	}

	if err := a.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return a, nil
}

// Add appends run and rewrites the file, dropping the oldest runs past maxRuns.
func (a *Archive) Add(run *models.SearchRun) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.runs = append(a.runs, run)
	if a.maxRuns > 0 && len(a.runs) > a.maxRuns {
		a.runs = slices.Clone(a.runs[len(a.runs)-a.maxRuns:])
	}
	return a.save()
}

// Recent returns up to limit runs, newest first.
func (a *Archive) Recent(limit int) []*models.SearchRun {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := len(a.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*models.SearchRun, 0, n)
	for i := len(a.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, a.runs[i])
	}
	return out
}

func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.runs)
}

func (a *Archive) save() error {
	data, err := json.MarshalIndent(a.runs, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first for atomicity
	tmpFile := a.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile, a.filename)
}

func (a *Archive) Load() error {
	data, err := os.ReadFile(a.filename)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return json.Unmarshal(data, &a.runs)
}
