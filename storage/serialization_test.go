package storage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/core"
)

func TestUnmarshalPromptsEmpty(t *testing.T) {
	prompts, err := UnmarshalPrompts(nil)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestUnmarshalPromptsTolerantRead(t *testing.T) {
	// Older records may lack usageCount and lastUsedAt entirely.
	raw := json.RawMessage(`[{"id":"p1","title":"t","content":"c","category":"Work","createdAt":100,"updatedAt":100}]`)
	prompts, err := UnmarshalPrompts(raw)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, 0, prompts[0].UsageCount)
	assert.Equal(t, int64(0), prompts[0].LastUsedAt)
}

func TestUnmarshalPromptsGarbage(t *testing.T) {
	_, err := UnmarshalPrompts(json.RawMessage(`{"not":"an array"`))
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}

func TestMarshalPromptsNilBecomesEmptyArray(t *testing.T) {
	data, err := MarshalPrompts(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestUnmarshalSettingsDefaults(t *testing.T) {
	settings, err := UnmarshalSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), settings)
}

func TestUnmarshalSettingsPartialKeepsDefaults(t *testing.T) {
	settings, err := UnmarshalSettings(json.RawMessage(`{"theme":"dark"}`))
	require.NoError(t, err)
	assert.Equal(t, "dark", settings.Theme)
	assert.Equal(t, core.DefaultCategoryName, settings.DefaultCategory)
}

func TestCategoriesRoundTrip(t *testing.T) {
	in := []core.Category{{ID: "c1", Name: "Work", Color: "#ff0000"}, {ID: "c2", Name: "Ideas"}}
	data, err := MarshalCategories(in)
	require.NoError(t, err)
	out, err := UnmarshalCategories(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
