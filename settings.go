package promptkeep

import (
	"context"
	"encoding/json"

	"github.com/promptkeep/promptkeep/core"
	"github.com/promptkeep/promptkeep/storage"
)

// GetSettings returns the settings record, or the defaults when none has
// been written yet.
func (m *Manager) GetSettings(ctx context.Context) (core.Settings, error) {
	values, err := m.store.Get(ctx, storage.KeySettings)
	if err != nil {
		return core.Settings{}, normalizeErr(err, "failed to read settings")
	}
	settings, err := storage.UnmarshalSettings(values[storage.KeySettings])
	if err != nil {
		return core.Settings{}, normalizeErr(err, "failed to read settings")
	}
	return settings, nil
}

// UpdateSettings merges the supplied fields into the settings record.
// Settings is a single record with no cross-collection invariant, so no
// lock is taken.
func (m *Manager) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (core.Settings, error) {
	settings, err := m.GetSettings(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	if patch.DefaultCategory != nil {
		settings.DefaultCategory = *patch.DefaultCategory
	}
	if patch.SortBy != nil {
		settings.SortBy = *patch.SortBy
	}
	if patch.SortOrder != nil {
		settings.SortOrder = *patch.SortOrder
	}
	if patch.Theme != nil {
		settings.Theme = *patch.Theme
	}
	if patch.InterfaceMode != nil {
		settings.InterfaceMode = *patch.InterfaceMode
	}

	data, err := storage.MarshalSettings(settings)
	if err != nil {
		return core.Settings{}, normalizeErr(err, "failed to write settings")
	}
	if err := m.store.Set(ctx, map[string]json.RawMessage{storage.KeySettings: data}); err != nil {
		return core.Settings{}, normalizeErr(err, "failed to write settings")
	}
	return settings, nil
}
