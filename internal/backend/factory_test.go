package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"renewables/internal/config"
	applog "renewables/internal/log"
)

func quietFactory() Factory {
	return NewFactory(applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)}))
}

func TestFactory_Memory(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	years, err := res.Provider.ListYears(context.Background())
	if err != nil {
		t.Fatalf("ListYears() error = %v", err)
	}
	if len(years) != 3 || years[0] != 2019 || years[2] != 2021 {
		t.Errorf("ListYears() = %v, want [2019 2020 2021]", years)
	}
	if res.Close() != nil {
		t.Error("Close() on memory backend should be a no-op")
	}
}

func TestFactory_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("date,state,renewables\n2018-05-01,Iowa,40\nbad,Iowa,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := quietFactory().CreateBackend(context.Background(), Config{Type: CSVBackend, CSVPath: path}); err == nil {
		t.Error("expected malformed row to fail the load")
	}

	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: CSVBackend, CSVPath: path, CSVSkipInvalid: true})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	recs, err := res.Provider.RecordsForYear(context.Background(), 2018)
	if err != nil || len(recs) != 1 {
		t.Errorf("RecordsForYear() = %v, %v", recs, err)
	}
}

func TestFactory_SQLite(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "r.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Close()
	if res.Store == nil {
		t.Error("sqlite backend should expose its store")
	}
}

func TestFactory_InvalidConfig(t *testing.T) {
	tests := []Config{
		{Type: "postgres"},
		{Type: CSVBackend},
		{Type: RemoteBackend},
		{Type: SheetsBackend, GoogleSpreadsheetID: "id"},
	}
	for _, cfg := range tests {
		if _, err := quietFactory().CreateBackend(context.Background(), cfg); err == nil {
			t.Errorf("CreateBackend(%+v) error = nil", cfg)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Error("expected error for invalid backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "remote", RemoteBaseURL: "http://x"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != RemoteBackend || cfg.RemoteBaseURL != "http://x" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}
}
