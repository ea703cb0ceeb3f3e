package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"renewables/internal/amqp"
	"renewables/internal/core"
	"renewables/internal/dataset"
	"renewables/internal/dataset/csvfile"
	applog "renewables/internal/log"
)

// RecordStore is the writable side of the sqlite backend.
type RecordStore interface {
	ReplaceAll(ctx context.Context, source string, records []core.Record, skipped int) error
}

// ImportResult summarises one import.
type ImportResult struct {
	Source  string
	Records int
	Skipped int
	Years   []int
}

// Importer replaces the stored dataset with a parsed file and announces it
type Importer struct {
	store     RecordStore
	publisher amqp.Publisher
	logger    *applog.Logger
}

// NewImporter returns an importer. publisher may be nil when AMQP is not configured.
func NewImporter(store RecordStore, publisher amqp.Publisher, logger *applog.Logger) *Importer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Importer{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentImporter),
	}
}

// ImportFile imports the CSV file at path.
func (i *Importer) ImportFile(ctx context.Context, path string, opts dataset.ParseOptions) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return i.Import(ctx, filepath.Base(path), f, opts)
}

// Import parses r and replaces the store contents. A publish failure is logged
// but does not fail the import: the records are already committed.
func (i *Importer) Import(ctx context.Context, source string, r io.Reader, opts dataset.ParseOptions) (ImportResult, error) {
	res, err := csvfile.Parse(r, opts)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", source, err)
	}

	if err := i.store.ReplaceAll(ctx, source, res.Records, res.Skipped); err != nil {
		return ImportResult{}, fmt.Errorf("store records: %w", err)
	}

	out := ImportResult{
		Source:  source,
		Records: len(res.Records),
		Skipped: res.Skipped,
		Years:   core.DistinctYears(res.Records),
	}

	i.logger.InfoContext(ctx, "Dataset imported",
		applog.FieldSource, source,
		applog.FieldRows, out.Records,
		applog.FieldSkipped, out.Skipped,
		applog.FieldOperation, applog.OpImport)

	if i.publisher == nil {
		i.logger.WarnContext(ctx, "AMQP client not available, skipping dataset updated message")
		return out, nil
	}
	if err := i.publisher.PublishDatasetUpdated(ctx, source, out.Records, out.Years); err != nil {
		i.logger.ErrorContext(ctx, "Failed to publish dataset updated message",
			applog.FieldSource, source,
			applog.FieldError, err)
	}
	return out, nil
}
