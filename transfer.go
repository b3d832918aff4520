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


package promptkeep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/promptkeep/promptkeep/core"
	"github.com/promptkeep/promptkeep/storage"
)

// GetAllData returns the complete snapshot of all three collections.
func (m *Manager) GetAllData(ctx context.Context) (core.Snapshot, error) {
	values, err := m.store.Get(ctx, storage.KeyPrompts, storage.KeyCategories, storage.KeySettings)
	if err != nil {
		return core.Snapshot{}, normalizeErr(err, "failed to read stored data")
	}
	prompts, err := storage.UnmarshalPrompts(values[storage.KeyPrompts])
	if err != nil {
		return core.Snapshot{}, normalizeErr(err, "failed to read stored data")
	}
	categories, err := storage.UnmarshalCategories(values[storage.KeyCategories])
	if err != nil {
		return core.Snapshot{}, normalizeErr(err, "failed to read stored data")
	}
	settings, err := storage.UnmarshalSettings(values[storage.KeySettings])
	if err != nil {
		return core.Snapshot{}, normalizeErr(err, "failed to read stored data")
	}
	if prompts == nil {
		prompts = []core.Prompt{}
	}
	if categories == nil {
		categories = []core.Category{}
	}
	return core.Snapshot{Prompts: prompts, Categories: categories, Settings: settings}, nil
}

// ClearAllData wipes the backing store.
func (m *Manager) ClearAllData(ctx context.Context) error {
	return m.locks.WithLocks(ctx, []string{lockCategories, lockPrompts}, func(ctx context.Context) error {
		return normalizeErr(m.store.Clear(ctx), "failed to clear storage")
	})
}

// ExportData serializes the full snapshot as pretty-printed JSON, intended
// for file download and a later ImportData.
func (m *Manager) ExportData(ctx context.Context) (string, error) {
	snapshot, err := m.GetAllData(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", normalizeErr(fmt.Errorf("%w: snapshot: %w", storage.ErrSerializationFailed, err), "failed to export data")
	}
	return string(data), nil
}

// ImportData replaces all stored data with the given snapshot.
//
// The flow is validate → quota-check → backup → clear → write. Validation
// collects every violation so a broken import can be fixed in one pass; the
// quota check runs against total capacity since existing data is about to
// be wiped. If any write fails, all three collections are restored from the
// in-memory backup; restoration is attempted for every collection even when
// some fail, and unrecoverable collections are named in the returned error.
func (m *Manager) ImportData(ctx context.Context, raw string) error {
	return m.locks.WithLocks(ctx, []string{lockCategories, lockPrompts}, func(ctx context.Context) error {
		var snapshot core.Snapshot
		if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
			return core.CorruptionError("import data is not valid JSON", err)
		}

		if violations := core.ValidateSnapshot(snapshot); len(violations) > 0 {
			return core.SnapshotError(violations)
		}

		entries, totalSize, err := marshalSnapshot(snapshot)
		if err != nil {
			return normalizeErr(err, "failed to encode import data")
		}
		if totalSize > m.store.QuotaBytes() {
			return core.QuotaError(
				"import is larger than total storage capacity",
				fmt.Sprintf("snapshot is %d bytes, capacity %d", totalSize, m.store.QuotaBytes()),
			)
		}

		backup, err := m.store.Get(ctx, storage.KeyPrompts, storage.KeyCategories, storage.KeySettings)
		if err != nil {
			return normalizeErr(err, "failed to back up existing data")
		}

		if err := m.store.Clear(ctx); err != nil {
			return normalizeErr(err, "failed to clear storage for import")
		}

		writeErr := m.writeSnapshot(ctx, entries)
		if writeErr == nil {
			m.logger.Info("import complete",
				"prompts", len(snapshot.Prompts),
				"categories", len(snapshot.Categories),
				"bytes", totalSize)
			return nil
		}

		m.logger.Error("import write failed, rolling back", "err", writeErr)
		unrecovered, restoreErrs := m.restoreBackup(ctx, backup)
		if len(unrecovered) > 0 {
			return core.UnavailableError(
				"import failed and some data could not be rolled back",
				errors.Join(append([]error{writeErr}, restoreErrs...)...),
			).WithDetails("unrecovered collections: " + strings.Join(unrecovered, ", "))
		}
		// Rollback succeeded; surface the original failure so the caller
		// knows the import did not take effect.
		return normalizeErr(writeErr, "import failed")
	})
}

// marshalSnapshot encodes each collection and reports the combined size.
func marshalSnapshot(snapshot core.Snapshot) (map[string]json.RawMessage, int64, error) {
	promptData, err := storage.MarshalPrompts(snapshot.Prompts)
	if err != nil {
		return nil, 0, err
	}
	catData, err := storage.MarshalCategories(snapshot.Categories)
	if err != nil {
		return nil, 0, err
	}
	settingsData, err := storage.MarshalSettings(snapshot.Settings)
	if err != nil {
		return nil, 0, err
	}
	entries := map[string]json.RawMessage{
		storage.KeyPrompts:    promptData,
		storage.KeyCategories: catData,
		storage.KeySettings:   settingsData,
	}
	total := int64(len(promptData) + len(catData) + len(settingsData))
	return entries, total, nil
}

// writeSnapshot writes the three collections one key at a time so that a
// failure identifies the collection it hit.
func (m *Manager) writeSnapshot(ctx context.Context, entries map[string]json.RawMessage) error {
	for _, key := range []string{storage.KeyPrompts, storage.KeyCategories, storage.KeySettings} {
		if err := m.store.Set(ctx, map[string]json.RawMessage{key: entries[key]}); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return nil
}

// restoreBackup re-writes every backed-up collection after a failed import.
// All restorations are attempted via a worker pool regardless of individual
// failures, so a partial restoration still salvages what it can. Returns
// the keys that could not be restored.
func (m *Manager) restoreBackup(ctx context.Context, backup map[string]json.RawMessage) ([]string, []error) {
	// Start from a clean slate: a key absent from the backup was absent
	// before the import too.
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear partially imported data before rollback", "err", err)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failed   []string
		failures []error
	)

	restore := func(key string, value json.RawMessage) func() {
		return func() {
			if err := m.store.Set(ctx, map[string]json.RawMessage{key: value}); err != nil {
				mu.Lock()
				failed = append(failed, key)
				failures = append(failures, fmt.Errorf("restore %s: %w", key, err))
				mu.Unlock()
			}
		}
	}

	pool, poolErr := ants.NewPool(m.rollbackWorkers)
	if poolErr == nil {
		defer pool.Release()
	}
	for _, key := range []string{storage.KeyPrompts, storage.KeyCategories, storage.KeySettings} {
		value, ok := backup[key]
		if !ok {
			continue
		}
		task := restore(key, value)
		if poolErr != nil {
			task()
			continue
		}
		wg.Add(1)
		if err := pool.Submit(func() { defer wg.Done(); task() }); err != nil {
			wg.Done()
			task()
		}
	}
	wg.Wait()

	sort.Strings(failed)
	return failed, failures
}
