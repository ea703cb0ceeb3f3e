package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"renewables/internal/dataset"
	applog "renewables/internal/log"
	"renewables/internal/storage"
)

type recordingPublisher struct {
	calls  int
	source string
	rows   int
	years  []int
	err    error
}

func (p *recordingPublisher) PublishDatasetUpdated(_ context.Context, source string, rows int, years []int) error {
	p.calls++
	p.source, p.rows, p.years = source, rows, years
	return p.err
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

const sample = `date,state,renewables
2019-01-01,Iowa,40.5
2019-01-01,Ohio,3
2020-01-01,Iowa,55
`

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestImporter_Import(t *testing.T) {
	repo := newRepo(t)
	pub := &recordingPublisher{}
	imp := NewImporter(repo, pub, quietLogger())
	ctx := context.Background()

	res, err := imp.Import(ctx, "sample.csv", strings.NewReader(sample), dataset.ParseOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Records != 3 || res.Skipped != 0 {
		t.Errorf("Import() = %+v", res)
	}

	years, err := repo.ListYears(ctx)
	if err != nil || len(years) != 2 {
		t.Errorf("ListYears() = %v, %v", years, err)
	}
	if pub.calls != 1 || pub.source != "sample.csv" || pub.rows != 3 || len(pub.years) != 2 {
		t.Errorf("publisher got %+v", pub)
	}
}

func TestImporter_ParseErrorLeavesStoreUntouched(t *testing.T) {
	repo := newRepo(t)
	imp := NewImporter(repo, nil, quietLogger())
	ctx := context.Background()

	if _, err := imp.Import(ctx, "ok", strings.NewReader(sample), dataset.ParseOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := imp.Import(ctx, "bad", strings.NewReader("date,state,renewables\nnope,Iowa,1\n"), dataset.ParseOptions{})
	if err == nil {
		t.Fatal("expected parse error")
	}

	recs, _ := repo.RecordsForYear(ctx, 2019)
	if len(recs) != 2 {
		t.Errorf("RecordsForYear(2019) = %d records, want 2", len(recs))
	}
}

func TestImporter_SkipInvalid(t *testing.T) {
	repo := newRepo(t)
	imp := NewImporter(repo, nil, quietLogger())

	res, err := imp.Import(context.Background(), "mixed", strings.NewReader(sample+"nope,Iowa,1\n"), dataset.ParseOptions{SkipInvalid: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Records != 3 || res.Skipped != 1 {
		t.Errorf("Import() = %+v", res)
	}

	info, err := repo.LastImport(context.Background())
	if err != nil || info == nil {
		t.Fatalf("LastImport() = %v, %v", info, err)
	}
}

func TestImporter_PublishFailureDoesNotFail(t *testing.T) {
	repo := newRepo(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	imp := NewImporter(repo, pub, quietLogger())

	if _, err := imp.Import(context.Background(), "s", strings.NewReader(sample), dataset.ParseOptions{}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if pub.calls != 1 {
		t.Errorf("publish calls = %d", pub.calls)
	}
}

func TestImporter_ImportFile(t *testing.T) {
	repo := newRepo(t)
	path := filepath.Join(t.TempDir(), "renewables.csv")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewImporter(repo, nil, quietLogger()).ImportFile(context.Background(), path, dataset.ParseOptions{})
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if res.Source != "renewables.csv" {
		t.Errorf("Source = %q", res.Source)
	}

	if _, err := NewImporter(repo, nil, quietLogger()).ImportFile(context.Background(), path+".missing", dataset.ParseOptions{}); err == nil {
		t.Error("expected error for missing file")
	}
}
