package backend

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"renewables/internal/dataset"
	"renewables/internal/dataset/csvfile"
	"renewables/internal/dataset/remote"
	"renewables/internal/dataset/sheets"
	applog "renewables/internal/log"
	"renewables/internal/storage"
)

//go:embed sample.csv
var sampleCSV []byte

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend builds the provider selected by config.Type. Parse failures of
// a local file are returned, so startup fails with nothing to show.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(config)
	case RemoteBackend:
		return f.createRemoteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVBackend(config Config) (*BackendResult, error) {
	store, err := csvfile.Load(config.CSVPath, dataset.ParseOptions{SkipInvalid: config.CSVSkipInvalid})
	if err != nil {
		return nil, fmt.Errorf("failed to load CSV dataset: %w", err)
	}

	f.logger.Info("Initialized csv backend",
		"path", config.CSVPath,
		"records", store.Len(),
		"skip_invalid", config.CSVSkipInvalid)

	return &BackendResult{Provider: store}, nil
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*BackendResult, error) {
	cli, err := remote.New(config.RemoteBaseURL, nil, config.RemoteTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote client: %w", err)
	}

	f.logger.Info("Initialized remote backend", "base_url", config.RemoteBaseURL, "timeout", config.RemoteTimeout)

	return &BackendResult{Provider: cli}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsJSON: config.GoogleCredentialsJSON,
		CredentialsFile: config.GoogleCredentialsFile,
		Parse:           dataset.ParseOptions{SkipInvalid: config.CSVSkipInvalid},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "range", config.GoogleSheetRange)

	return &BackendResult{Provider: cli}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Provider: repo,
		Store:    repo,
		Cleanup:  repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(_ Config) (*BackendResult, error) {
	store, err := csvfile.Read(bytes.NewReader(sampleCSV), dataset.ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load sample dataset: %w", err)
	}

	f.logger.Info("Initialized memory backend", "records", store.Len())

	return &BackendResult{Provider: store}, nil
}
