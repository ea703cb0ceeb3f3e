// Package sheets reads renewables records from a Google Sheets range laid out
// like the CSV source (date, state, renewables).
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"renewables/internal/core"
	"renewables/internal/dataset"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ dataset.Provider = (*Client)(nil)

// valuesFunc fetches a raw values matrix; swapped out in tests.
type valuesFunc func(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)

type Client struct {
	spreadsheetID string
	rng           string
	opts          dataset.ParseOptions
	values        valuesFunc
}

// Config selects the spreadsheet and credentials.
type Config struct {
	SpreadsheetID string
	// Range in A1 notation, e.g. "Renewables!A:C".
	Range string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
	Parse           dataset.ParseOptions
}

// New creates a Sheets-backed provider using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(cfg.Range) == "" {
		cfg.Range = "Renewables!A:C"
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		spreadsheetID: cfg.SpreadsheetID,
		rng:           cfg.Range,
		opts:          cfg.Parse,
		values: func(ctx context.Context, id, rng string) ([][]interface{}, error) {
			resp, err := svc.Spreadsheets.Values.Get(id, rng).Context(ctx).Do()
			if err != nil {
				return nil, err
			}
			return resp.Values, nil
		},
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ListYears reads the whole range and returns the distinct years.
func (c *Client) ListYears(ctx context.Context) ([]int, error) {
	recs, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.DistinctYears(recs), nil
}

// RecordsForYear reads the whole range and keeps the rows of year.
func (c *Client) RecordsForYear(ctx context.Context, year int) ([]core.Record, error) {
	recs, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterYear(recs, year), nil
}

func (c *Client) readAll(ctx context.Context) ([]core.Record, error) {
	if c.values == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.values(ctx, c.spreadsheetID, c.rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.rng, err)
	}
	res, err := dataset.ParseTable(toRows(values), c.opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.rng, err)
	}
	if res.Skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed sheet rows", "range", c.rng, "skipped", res.Skipped)
	}
	return res.Records, nil
}

// toRows converts the Sheets values matrix to strings. Numbers arrive as float64.
func toRows(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cols := make([]string, len(row))
		for j, v := range row {
			cols[j] = strings.TrimSpace(fmt.Sprint(v))
		}
		out[i] = cols
	}
	return out
}
