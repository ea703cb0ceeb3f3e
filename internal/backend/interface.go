package backend

import (
	"context"
	"time"

	"renewables/internal/dataset"
	"renewables/internal/storage"
)

// CleanupFunc releases backend resources
type CleanupFunc func() error

// BackendResult contains the provider and optional cleanup function
type BackendResult struct {
	Provider dataset.Provider
	// Store is set for the sqlite backend, the only one that can be written to.
	Store   *storage.SQLiteRepository
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates providers based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// csv
	CSVPath        string
	CSVSkipInvalid bool

	// remote
	RemoteBaseURL string
	RemoteTimeout time.Duration

	// sqlite
	SQLiteDBPath string

	// sheets
	GoogleSpreadsheetID   string
	GoogleSheetRange      string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	RemoteBackend BackendType = "remote"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, RemoteBackend, SheetsBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
