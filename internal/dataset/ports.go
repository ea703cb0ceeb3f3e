package dataset

import (
	"context"

	"renewables/internal/core"
)

// Ports for the data sources feeding the chart.
type (
	// YearLister reports which years have data.
	YearLister interface {
		ListYears(ctx context.Context) ([]int, error)
	}

	// RecordReader returns the raw records of a single year.
	RecordReader interface {
		RecordsForYear(ctx context.Context, year int) ([]core.Record, error)
	}

	// Provider is what the view controller and the HTTP API consume.
	Provider interface {
		YearLister
		RecordReader
	}
)
