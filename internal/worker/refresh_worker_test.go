package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"renewables/internal/amqp"
	applog "renewables/internal/log"
)

type countingPurger struct{ calls atomic.Int32 }

func (p *countingPurger) Purge() int { p.calls.Add(1); return 3 }

type fakeConsumer struct {
	messages []*amqp.DatasetUpdatedMessage
	err      error
	closed   bool
}

func (c *fakeConsumer) ConsumeDatasetUpdated(ctx context.Context, h amqp.Handler) error {
	for _, m := range c.messages {
		if err := h(ctx, m); err != nil {
			return err
		}
	}
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *fakeConsumer) Close() error { c.closed = true; return nil }

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newWorker(p Purger, reload func(context.Context) error) *RefreshWorker {
	w := NewRefreshWorker(p, reload, quietLogger())
	w.backoff = func(int) time.Duration { return time.Millisecond }
	return w
}

func TestHandleDatasetUpdated(t *testing.T) {
	p := &countingPurger{}
	reloaded := false
	w := newWorker(p, func(context.Context) error { reloaded = true; return nil })

	if err := w.HandleDatasetUpdated(context.Background(), amqp.NewDatasetUpdatedMessage("import", 10, nil)); err != nil {
		t.Fatalf("HandleDatasetUpdated() error = %v", err)
	}
	if !reloaded || p.calls.Load() != 1 {
		t.Errorf("reloaded = %v, purges = %d", reloaded, p.calls.Load())
	}
}

func TestHandleDatasetUpdated_ReloadError(t *testing.T) {
	p := &countingPurger{}
	w := newWorker(p, func(context.Context) error { return errors.New("disk gone") })

	if err := w.HandleDatasetUpdated(context.Background(), amqp.NewDatasetUpdatedMessage("import", 1, nil)); err == nil {
		t.Fatal("expected reload error")
	}
	if p.calls.Load() != 0 {
		t.Error("cache must not be purged when reload fails")
	}
}

func TestRun_ReconnectsOnConnectionLoss(t *testing.T) {
	p := &countingPurger{}
	w := newWorker(p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dials atomic.Int32
	dial := func() (Consumer, error) {
		switch dials.Add(1) {
		case 1:
			return nil, errors.New("dial tcp: connection refused")
		case 2:
			return &fakeConsumer{
				messages: []*amqp.DatasetUpdatedMessage{amqp.NewDatasetUpdatedMessage("a", 1, nil)},
				err:      amqp.ErrChannelClosed,
			}, nil
		default:
			cancel()
			return &fakeConsumer{}, nil
		}
	}

	if err := w.Run(ctx, dial); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if dials.Load() != 3 {
		t.Errorf("dials = %d, want 3", dials.Load())
	}
	if p.calls.Load() != 1 {
		t.Errorf("purges = %d, want 1", p.calls.Load())
	}
}

func TestRun_StopsOnOtherErrors(t *testing.T) {
	w := newWorker(&countingPurger{}, nil)
	dial := func() (Consumer, error) {
		return &fakeConsumer{err: errors.New("access refused")}, nil
	}
	if err := w.Run(context.Background(), dial); err == nil {
		t.Fatal("expected Run to stop with an error")
	}
}
