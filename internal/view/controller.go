// Package view holds the selected year and keeps the chart on a surface in
// sync with it.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"renewables/internal/chart"
	"renewables/internal/core"
	"renewables/internal/dataset"
	applog "renewables/internal/log"
)

type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

var (
	// ErrStale is returned by a load that was superseded by a newer selection.
	ErrStale    = errors.New("selection superseded")
	ErrClosed   = errors.New("controller closed")
	ErrNotReady = errors.New("controller not initialized")
)

// Load fetches the records of year and aggregates them into chart rows.
func Load(ctx context.Context, p dataset.RecordReader, year int) ([]core.Row, error) {
	records, err := p.RecordsForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("records for %d: %w", year, err)
	}
	return core.Aggregate(core.FilterYear(records, year)), nil
}

// Controller drives one chart mount point from a provider. Only the most
// recent selection is ever drawn: starting a load cancels the one in flight.
type Controller struct {
	provider dataset.Provider
	surface  *chart.Surface
	mount    string
	opts     chart.Options
	logger   *applog.Logger

	mu      sync.Mutex
	state   State
	sel     core.Selection
	rows    []core.Row
	lastErr error
	seq     uint64
	cancel  context.CancelFunc
	closed  bool
}

func NewController(p dataset.Provider, s *chart.Surface, mount string, opts chart.Options, logger *applog.Logger) *Controller {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Controller{
		provider: p,
		surface:  s,
		mount:    mount,
		opts:     opts,
		logger:   logger.WithComponent(applog.ComponentView),
	}
}

// Init lists the available years, selects the most recent one and draws it.
// With no years at all the controller is ready and shows an empty chart.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	years, err := c.provider.ListYears(ctx)
	if err != nil {
		err = fmt.Errorf("list years: %w", err)
		c.fail(err)
		return err
	}

	sel, ok := core.NewSelection(years)
	if !ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return ErrClosed
		}
		c.sel = core.Selection{}
		c.rows = []core.Row{}
		c.state = Ready
		c.lastErr = nil
		chart.RenderRows(c.surface, c.mount, c.rows, c.opts)
		c.logger.Warn("No years available", applog.FieldOperation, applog.OpLoad)
		return nil
	}

	return c.load(ctx, sel)
}

// Select switches to year. The year must lie within the available bounds; a
// year without records renders an empty chart.
func (c *Controller) Select(ctx context.Context, year int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != Ready {
		c.mu.Unlock()
		return ErrNotReady
	}
	sel := c.sel
	c.mu.Unlock()

	if len(sel.Years) == 0 || year < sel.Min || year > sel.Max {
		return fmt.Errorf("%w: %d", core.ErrUnknownYear, year)
	}
	sel.Year = year
	return c.load(ctx, sel)
}

func (c *Controller) load(parent context.Context, sel core.Selection) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.seq++
	seq := c.seq
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	rows, err := Load(ctx, c.provider, sel.Year)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if seq != c.seq {
		c.logger.Debug("Discarding superseded load", applog.FieldYear, sel.Year)
		return ErrStale
	}
	c.cancel = nil
	if err != nil {
		c.lastErr = err
		c.logger.Error("Failed to load year",
			applog.FieldYear, sel.Year,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		return err
	}

	chart.RenderRows(c.surface, c.mount, rows, c.opts)
	c.sel = sel
	c.rows = rows
	c.state = Ready
	c.lastErr = nil
	applog.NewStructuredLogger(c.logger).LogRender(ctx, c.mount, sel.Year, len(rows))
	return nil
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	c.logger.Error("View update failed", applog.FieldError, err)
}

// Close cancels any load in flight. Later completions are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Selection() core.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := c.sel
	sel.Years = append([]int(nil), c.sel.Years...)
	return sel
}

// Rows returns the rows currently drawn.
func (c *Controller) Rows() []core.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Row(nil), c.rows...)
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Mount() string { return c.mount }

// Surface is the drawing surface the controller renders into.
func (c *Controller) Surface() *chart.Surface { return c.surface }
