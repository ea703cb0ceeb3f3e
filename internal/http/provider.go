package http

import (
	"context"
	"errors"
	"strconv"

	"renewables/internal/cache"
	"renewables/internal/core"
	"renewables/internal/dataset"
)

var errNoProvider = errors.New("no data provider configured")

const yearsKey = "years"

// cachedProvider fronts the configured provider with the server's LRU caches.
// Returned slices are shared between requests and must not be modified.
type cachedProvider struct {
	provider dataset.Provider
	years    *cache.Loader[[]int]
	records  *cache.Loader[[]core.Record]
}

var _ dataset.Provider = (*cachedProvider)(nil)

func (c *cachedProvider) ListYears(ctx context.Context) ([]int, error) {
	if c.provider == nil {
		return nil, errNoProvider
	}
	return c.years.Get(ctx, yearsKey, c.provider.ListYears)
}

func (c *cachedProvider) RecordsForYear(ctx context.Context, year int) ([]core.Record, error) {
	if c.provider == nil {
		return nil, errNoProvider
	}
	return c.records.Get(ctx, strconv.Itoa(year), func(ctx context.Context) ([]core.Record, error) {
		return c.provider.RecordsForYear(ctx, year)
	})
}

// selection resolves the year a chart request refers to. An empty raw value
// picks the most recent year; ok is false when there are no years at all.
func (c *cachedProvider) selection(ctx context.Context, raw string) (sel core.Selection, ok bool, err error) {
	years, err := c.ListYears(ctx)
	if err != nil {
		return core.Selection{}, false, err
	}
	sel, ok = core.NewSelection(years)
	if raw == "" {
		return sel, ok, nil
	}
	year, err := parseYear(raw)
	if err != nil {
		return core.Selection{}, false, err
	}
	if !ok || year < sel.Min || year > sel.Max {
		return core.Selection{}, false, core.ErrUnknownYear
	}
	sel.Year = year
	return sel, true, nil
}
