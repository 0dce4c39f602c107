// Package persist keeps an allow-listed projection of a store in durable
// storage. An Adapter hydrates its store once at construction and then
// writes the projection after every notification pass.
package persist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/routinely/cli/internal/classify"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/state"
	"github.com/routinely/cli/internal/store"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 5 * time.Second

// Config describes how one store is persisted.
//
// Project must be pure: the same T always yields the same P. Merge folds a
// hydrated P into the store's initial T and must only touch fields that P
// carries.
type Config[T, P any] struct {
	Name         string
	Project      func(T) P
	Merge        func(current T, persisted P) T
	Backend      interfaces.StorageBackend
	Logger       *zap.Logger
	WriteTimeout time.Duration
}

// Adapter binds a store to a storage entry
type Adapter[T, P any] struct {
	cfg   Config[T, P]
	store *store.Store[T]
	log   *zap.Logger

	mu           sync.Mutex
	hydrated     bool
	hydrationErr error
	writes       int
	failures     int
	lastErr      error
	unsubscribe  func()
}

// New hydrates s from cfg.Backend and subscribes to it. Hydration never
// fails: a missing or unreadable entry leaves the initial state untouched.
func New[T, P any](ctx context.Context, s *store.Store[T], cfg Config[T, P]) *Adapter[T, P] {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	a := &Adapter[T, P]{
		cfg:   cfg,
		store: s,
		log:   log.With(zap.String("store", cfg.Name)),
	}

	a.hydrate(ctx)
	a.unsubscribe = s.Subscribe(func(T, T) { a.write() })
	return a
}

func (a *Adapter[T, P]) hydrate(ctx context.Context) {
	defer func() {
		a.mu.Lock()
		a.hydrated = true
		a.mu.Unlock()
	}()

	raw, err := a.cfg.Backend.Get(ctx, a.cfg.Name)
	if stderrors.Is(err, state.ErrNotFound) {
		a.log.Debug("No persisted state, using initial state")
		return
	}
	if err != nil {
		a.fallback(err)
		return
	}

	var persisted P
	if err := json.Unmarshal(raw, &persisted); err != nil {
		a.fallback(err)
		return
	}

	a.store.Update(func(current T) T {
		return a.cfg.Merge(current, persisted)
	})
	a.log.Debug("Hydrated store", zap.Int("bytes", len(raw)))
}

func (a *Adapter[T, P]) fallback(err error) {
	c := classify.Hydration(err)
	a.mu.Lock()
	a.hydrationErr = err
	a.mu.Unlock()
	a.log.Debug("Hydration failed, using initial state",
		zap.Stringer("kind", c.Kind),
		zap.Error(err))
}

// write serializes the latest snapshot. Writes are serialized so the last
// completed write always reflects the newest state at the time it ran.
func (a *Adapter[T, P]) write() {
	a.mu.Lock()
	defer a.mu.Unlock()

	payload, err := json.Marshal(a.cfg.Project(a.store.GetState()))
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.WriteTimeout)
		err = a.cfg.Backend.Set(ctx, a.cfg.Name, payload)
		cancel()
	}

	a.writes++
	if err != nil {
		a.failures++
		a.lastErr = err
		a.log.Warn("Failed to persist store", zap.Error(err))
		return
	}
	a.lastErr = nil
}

// Name returns the storage key
func (a *Adapter[T, P]) Name() string {
	return a.cfg.Name
}

// Hydrated reports whether hydration has finished, successfully or not
func (a *Adapter[T, P]) Hydrated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hydrated
}

// HydrationErr returns the error that forced a fallback to initial state, if any
func (a *Adapter[T, P]) HydrationErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hydrationErr
}

// Stats reports attempted writes, failed writes and the most recent write error
func (a *Adapter[T, P]) Stats() (writes, failures int, lastErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes, a.failures, a.lastErr
}

// Clear removes the persisted entry without touching in-memory state
func (a *Adapter[T, P]) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.Backend.Delete(ctx, a.cfg.Name)
}

// Close stops persisting further changes
func (a *Adapter[T, P]) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}
