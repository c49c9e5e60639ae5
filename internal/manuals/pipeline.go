package manuals

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bull/manual-copilot/internal/chunker"
	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/pdftext"
)

// Indexer is the slice of the vector index adapter the pipeline needs.
type Indexer interface {
	IndexManual(ctx context.Context, unitNumber, filename string, chunks []chunker.Chunk) error
	DeleteManualIndex(ctx context.Context, unitNumber string) error
}

// IngestResult reports what one ingestion produced.
type IngestResult struct {
	Manual     Manual
	ChunkCount int
	Duration   time.Duration
}

// Pipeline drives ingestion: store the PDF, extract page text, chunk,
// index, register. Callers serialize uploads per unit; different units
// are independent.
type Pipeline struct {
	registry *Registry
	index    Indexer
	extract  func(path string) ([]chunker.Page, error)
	logger   *slog.Logger
}

// NewPipeline creates an ingestion pipeline over the registry and index.
func NewPipeline(registry *Registry, indexer Indexer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry: registry,
		index:    indexer,
		extract:  pdftext.ExtractPages,
		logger:   logger,
	}
}

// Ingest processes one uploaded manual. On extraction or indexing
// failure the stored file is removed again and the error propagated;
// no retries are performed.
func (p *Pipeline) Ingest(ctx context.Context, unitNumber, filename, description string, content io.Reader) (*IngestResult, error) {
	start := time.Now()

	unit := string(index.NormalizeUnit(unitNumber))
	if unit == "" {
		return nil, ErrEmptyUnit
	}

	exists, err := p.registry.Exists(unit)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("unit %s: %w", unit, ErrUnitExists)
	}

	dest := p.registry.PDFPath(unit)
	if err := saveFile(dest, content); err != nil {
		return nil, err
	}

	pages, err := p.extract(dest)
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	chunks, pageCount := chunker.ExtractChunks(pages)

	if err := p.index.IndexManual(ctx, unit, filename, chunks); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("index manual: %w", err)
	}

	manual := Manual{
		UnitNumber:  unit,
		Filename:    filename,
		Description: description,
		UploadedAt:  time.Now().UTC(),
		PageCount:   pageCount,
	}
	if err := p.registry.Put(manual); err != nil {
		return nil, err
	}

	result := &IngestResult{
		Manual:     manual,
		ChunkCount: len(chunks),
		Duration:   time.Since(start),
	}
	p.logger.Info("Ingested manual",
		"unit", unit,
		"filename", filename,
		"pages", pageCount,
		"chunks", result.ChunkCount,
		"duration", result.Duration,
	)
	return result, nil
}

// Remove deletes a manual: the stored PDF, the vector collection and
// the registry record.
func (p *Pipeline) Remove(ctx context.Context, unitNumber string) error {
	unit := string(index.NormalizeUnit(unitNumber))

	if _, err := p.registry.Get(unit); err != nil {
		return err
	}

	if err := os.Remove(p.registry.PDFPath(unit)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pdf: %w", err)
	}
	if err := p.index.DeleteManualIndex(ctx, unit); err != nil {
		return err
	}
	if err := p.registry.Delete(unit); err != nil {
		return err
	}

	p.logger.Info("Removed manual", "unit", unit)
	return nil
}

func saveFile(dest string, content io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("store pdf: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, content); err != nil {
		os.Remove(dest)
		return fmt.Errorf("store pdf: %w", err)
	}
	return nil
}
