// Package worker reacts to dataset-updated events published by the importer.
package worker

import (
	"context"
	"fmt"
	"time"

	"renewables/internal/amqp"
	applog "renewables/internal/log"
)

// Purger drops everything derived from the previous dataset.
type Purger interface {
	Purge() int
}

// Consumer is the part of amqp.Client the worker drives.
type Consumer interface {
	ConsumeDatasetUpdated(ctx context.Context, handler amqp.Handler) error
	Close() error
}

// Dialer opens a fresh broker connection.
type Dialer func() (Consumer, error)

// RefreshWorker purges cached chart rows whenever the dataset changes.
type RefreshWorker struct {
	cache   Purger
	reload  func(context.Context) error
	logger  *applog.Logger
	backoff func(int) time.Duration
}

// NewRefreshWorker returns a worker purging cache. reload, when non-nil, runs
// before the purge so the provider serves the new data first.
func NewRefreshWorker(cache Purger, reload func(context.Context) error, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &RefreshWorker{
		cache:   cache,
		reload:  reload,
		logger:  logger.WithComponent(applog.ComponentWorker),
		backoff: amqp.Backoff,
	}
}

// HandleDatasetUpdated is the amqp.Handler for dataset-updated messages.
func (w *RefreshWorker) HandleDatasetUpdated(ctx context.Context, msg *amqp.DatasetUpdatedMessage) error {
	if w.reload != nil {
		if err := w.reload(ctx); err != nil {
			return fmt.Errorf("reload dataset: %w", err)
		}
	}
	purged := w.cache.Purge()
	w.logger.InfoContext(ctx, "Dataset updated, cache purged",
		applog.FieldSource, msg.Source,
		applog.FieldRows, msg.Rows,
		"purged", purged)
	return nil
}

// Run consumes until ctx is done, reconnecting with backoff when the broker
// connection drops. Any other consume error stops the worker.
func (w *RefreshWorker) Run(ctx context.Context, dial Dialer) error {
	attempt := 0
	for {
		c, err := dial()
		if err != nil {
			w.logger.WarnContext(ctx, "AMQP connection failed", applog.FieldError, err, "attempt", attempt)
			if !w.wait(ctx, attempt) {
				return nil
			}
			attempt++
			continue
		}

		attempt = 0
		err = c.ConsumeDatasetUpdated(ctx, w.HandleDatasetUpdated)
		_ = c.Close()

		if ctx.Err() != nil {
			return nil
		}
		if !amqp.IsConnectionError(err) {
			return fmt.Errorf("consume dataset updates: %w", err)
		}
		w.logger.WarnContext(ctx, "AMQP connection lost, reconnecting", applog.FieldError, err)
		if !w.wait(ctx, attempt) {
			return nil
		}
		attempt++
	}
}

func (w *RefreshWorker) wait(ctx context.Context, attempt int) bool {
	t := time.NewTimer(w.backoff(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
