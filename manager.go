// Copyright 2026 Promptkeep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package promptkeep is a durable, size-constrained persistence layer for a
// prompt library. A Manager stores prompts, categories, and a settings
// record in a key-value backing store under three top-level keys, serializes
// read-modify-write spans through per-collection locks, enforces quota
// before any write, and supports transactional import/export with rollback.
package promptkeep

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/promptkeep/promptkeep/core"
	"github.com/promptkeep/promptkeep/locking"
	"github.com/promptkeep/promptkeep/storage"
)

// Lock keys, one per collection with cross-record invariants. Settings is a
// single record and needs no lock.
const (
	lockPrompts    = "prompts"
	lockCategories = "categories"
)

// defaultRollbackWorkers sizes the pool restoring collections after a
// failed import, one worker per top-level key.
const defaultRollbackWorkers = 3

// Manager is the storage façade. It holds no entity state in memory; the
// backing store is the sole source of truth. Construct one per process with
// New and share it; all methods are safe for concurrent use.
type Manager struct {
	store           storage.KeyValueStore
	locks           *locking.Registry
	logger          *slog.Logger
	now             func() time.Time
	rollbackWorkers int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source. Used by tests for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithRollbackWorkers overrides the import-rollback pool size.
func WithRollbackWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.rollbackWorkers = n
		}
	}
}

// New creates a Manager over the given backing store.
func New(store storage.KeyValueStore, opts ...Option) *Manager {
	m := &Manager{
		store:           store,
		locks:           locking.NewRegistry(),
		logger:          slog.Default(),
		now:             time.Now,
		rollbackWorkers: defaultRollbackWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close closes the backing store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) nowMillis() int64 {
	return core.NowMillis(m.now())
}

// normalizeErr folds raw backing-store failures into the kinded error that
// crosses the manager boundary. Already-kinded errors pass through
// unchanged, never double-wrapped.
func normalizeErr(err error, message string) error {
	if err == nil {
		return nil
	}
	var kinded *core.Error
	if errors.As(err, &kinded) {
		return kinded
	}
	switch {
	case errors.Is(err, storage.ErrQuotaExceeded):
		return core.QuotaError("storage quota exceeded", err.Error())
	case errors.Is(err, storage.ErrSerializationFailed):
		return core.CorruptionError("stored data could not be decoded", err)
	default:
		return core.UnavailableError(message, err)
	}
}

func (m *Manager) readPrompts(ctx context.Context) ([]core.Prompt, error) {
	values, err := m.store.Get(ctx, storage.KeyPrompts)
	if err != nil {
		return nil, normalizeErr(err, "failed to read prompts")
	}
	prompts, err := storage.UnmarshalPrompts(values[storage.KeyPrompts])
	if err != nil {
		return nil, normalizeErr(err, "failed to read prompts")
	}
	return prompts, nil
}

func (m *Manager) writePrompts(ctx context.Context, prompts []core.Prompt) error {
	data, err := storage.MarshalPrompts(prompts)
	if err != nil {
		return normalizeErr(err, "failed to write prompts")
	}
	err = m.store.Set(ctx, map[string]json.RawMessage{storage.KeyPrompts: data})
	return normalizeErr(err, "failed to write prompts")
}

func (m *Manager) readCategories(ctx context.Context) ([]core.Category, error) {
	values, err := m.store.Get(ctx, storage.KeyCategories)
	if err != nil {
		return nil, normalizeErr(err, "failed to read categories")
	}
	categories, err := storage.UnmarshalCategories(values[storage.KeyCategories])
	if err != nil {
		return nil, normalizeErr(err, "failed to read categories")
	}
	return categories, nil
}

func (m *Manager) writeCategories(ctx context.Context, categories []core.Category) error {
	data, err := storage.MarshalCategories(categories)
	if err != nil {
		return normalizeErr(err, "failed to write categories")
	}
	err = m.store.Set(ctx, map[string]json.RawMessage{storage.KeyCategories: data})
	return normalizeErr(err, "failed to write categories")
}

// writeCategoriesAndPrompts applies a compound cascade as one persistence
// call, so no observer can see one collection updated without the other.
func (m *Manager) writeCategoriesAndPrompts(ctx context.Context, categories []core.Category, prompts []core.Prompt) error {
	catData, err := storage.MarshalCategories(categories)
	if err != nil {
		return normalizeErr(err, "failed to write categories")
	}
	promptData, err := storage.MarshalPrompts(prompts)
	if err != nil {
		return normalizeErr(err, "failed to write prompts")
	}
	err = m.store.Set(ctx, map[string]json.RawMessage{
		storage.KeyCategories: catData,
		storage.KeyPrompts:    promptData,
	})
	return normalizeErr(err, "failed to write categories and prompts")
}
