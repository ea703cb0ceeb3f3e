// Package cache keeps year lists and per-year records in memory between
// requests.
package cache

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	applog "renewables/internal/log"
)

// Cache is the subset of LRUCache the loaders rely on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	SetIfCurrent(gen uint64, key string, data T) bool
	Generation() uint64
	Delete(key string)
	Purge() int
	Size() int
}

// Store is a cache the Manager can sweep and purge.
type Store interface {
	CleanExpired() int
	Purge() int
}

// DefaultLoadTimeout bounds a shared load once it no longer follows the
// context of the caller that started it.
const DefaultLoadTimeout = 30 * time.Second

// Loader fills a cache on miss. Concurrent misses for one key share a single
// call to the load function.
type Loader[T any] struct {
	cache   Cache[T]
	group   singleflight.Group
	timeout time.Duration
}

func NewLoader[T any](c Cache[T]) *Loader[T] {
	return &Loader[T]{cache: c, timeout: DefaultLoadTimeout}
}

// flightKey scopes in-flight loads to a cache generation so a load started
// before a purge is never joined after it.
func flightKey(key string, gen uint64) string {
	return key + "@" + strconv.FormatUint(gen, 10)
}

// Get returns the cached value for key or calls load once and caches the
// result. Errors are not cached. The shared load is detached from ctx, so a
// caller giving up only ends its own wait. A result loaded across a purge is
// returned but not cached.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	gen := l.cache.Generation()
	ch := l.group.DoChan(flightKey(key, gen), func() (any, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		v, err := load(lctx)
		if err != nil {
			return v, err
		}
		l.cache.SetIfCurrent(gen, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Forget drops key from the cache.
func (l *Loader[T]) Forget(key string) {
	l.group.Forget(flightKey(key, l.cache.Generation()))
	l.cache.Delete(key)
}

// Manager sweeps expired entries and purges every registered store on demand.
type Manager struct {
	stores      []Store
	logger      *applog.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager(logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Manager{
		logger:      logger.WithComponent(applog.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(s Store) {
	m.stores = append(m.stores, s)
}

// Purge empties every registered store and returns the number of dropped entries.
func (m *Manager) Purge() int {
	total := 0
	for _, s := range m.stores {
		total += s.Purge()
	}
	m.logger.Info("Cache purged", "entries", total)
	return total
}

// StartCleanup begins periodic removal of expired entries
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, s := range m.stores {
				cleaned += s.CleanExpired()
			}
			if cleaned > 0 {
				m.logger.Debug("Expired cache entries removed", "entries", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup routine; it is safe to call when cleanup never started.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	m.started = false
	close(m.stopCleanup)
	<-m.cleanupDone
}
