// Package csvfile is the local-file data provider: the whole table is parsed
// once and then served from memory.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"renewables/internal/dataset"
	"renewables/internal/dataset/memory"
)

// Load parses the file at path. Any failure is returned to the caller, which at
// startup means there is nothing to show.
func Load(path string, opts dataset.ParseOptions) (*memory.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	store, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return store, nil
}

// Read parses CSV content from r into an in-memory store.
func Read(r io.Reader, opts dataset.ParseOptions) (*memory.Store, error) {
	res, err := Parse(r, opts)
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		slog.Warn("Skipped malformed CSV rows", "skipped", res.Skipped, "kept", len(res.Records))
	}
	return memory.New(res.Records), nil
}

// Parse reads CSV content without building a store.
func Parse(r io.Reader, opts dataset.ParseOptions) (dataset.ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return dataset.ParseResult{}, fmt.Errorf("reading CSV: %w", err)
	}
	return dataset.ParseTable(rows, opts)
}
