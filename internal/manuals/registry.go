// Package manuals owns manual lifecycle: the on-disk PDF store, the
// metadata registry and the ingestion pipeline that feeds the vector
// index.
package manuals

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

var (
	ErrManualNotFound = errors.New("manual not found")
	ErrUnitExists     = errors.New("unit already exists")
	ErrEmptyUnit      = errors.New("unit number must not be empty")
)

// Manual is the stored metadata for one uploaded manual.
type Manual struct {
	UnitNumber  string    `json:"unit_number"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
	PageCount   int       `json:"page_count"`
}

const metaFilename = "manuals.json"

// Registry persists manual metadata as a JSON sidecar next to the
// stored PDFs. Access is serialized; the write path is
// load-modify-save under one lock.
type Registry struct {
	mu  sync.Mutex
	dir string
}

// NewRegistry opens (creating if needed) the storage directory.
func NewRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Registry{dir: dir}, nil
}

// PDFPath is where the stored PDF for a normalized unit id lives.
func (r *Registry) PDFPath(unit string) string {
	return filepath.Join(r.dir, unit+".pdf")
}

func (r *Registry) metaPath() string {
	return filepath.Join(r.dir, metaFilename)
}

func (r *Registry) load() (map[string]Manual, error) {
	raw, err := os.ReadFile(r.metaPath())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Manual{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	meta := map[string]Manual{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return meta, nil
}

func (r *Registry) save(meta map[string]Manual) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.WriteFile(r.metaPath(), raw, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// List returns all registered manuals sorted by unit number.
func (r *Registry) List() ([]Manual, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.load()
	if err != nil {
		return nil, err
	}
	manuals := make([]Manual, 0, len(meta))
	for _, m := range meta {
		manuals = append(manuals, m)
	}
	sort.Slice(manuals, func(i, j int) bool {
		return manuals[i].UnitNumber < manuals[j].UnitNumber
	})
	return manuals, nil
}

// Get looks up one manual by normalized unit id.
func (r *Registry) Get(unit string) (Manual, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.load()
	if err != nil {
		return Manual{}, err
	}
	m, ok := meta[unit]
	if !ok {
		return Manual{}, ErrManualNotFound
	}
	return m, nil
}

// Exists reports whether a manual is registered for the unit.
func (r *Registry) Exists(unit string) (bool, error) {
	_, err := r.Get(unit)
	if errors.Is(err, ErrManualNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put registers or replaces a manual record.
func (r *Registry) Put(m Manual) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.load()
	if err != nil {
		return err
	}
	meta[m.UnitNumber] = m
	return r.save(meta)
}

// Delete removes a manual record. Unknown units are ErrManualNotFound.
func (r *Registry) Delete(unit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := meta[unit]; !ok {
		return ErrManualNotFound
	}
	delete(meta, unit)
	return r.save(meta)
}
