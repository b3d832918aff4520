package promptkeep

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/core"
	"github.com/promptkeep/promptkeep/storage"
	badgerstore "github.com/promptkeep/promptkeep/storage/badger"
)

func TestSavePromptAssignsMetadata(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	prompt, err := m.SavePrompt(ctx, core.PromptDraft{
		Title:    "",
		Content:  "Hello",
		Category: core.DefaultCategoryName,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, prompt.ID)
	assert.Equal(t, 0, prompt.UsageCount)
	assert.Equal(t, prompt.CreatedAt, prompt.UpdatedAt)
	assert.Equal(t, prompt.CreatedAt, prompt.LastUsedAt)

	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, prompt, prompts[0])
}

func TestSavePromptIDsAreUnique(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		p, err := m.SavePrompt(ctx, core.PromptDraft{Content: "c", Category: "Work"})
		require.NoError(t, err)
		require.False(t, seen[p.ID], "duplicate id issued: %s", p.ID)
		seen[p.ID] = true
	}
}

func TestSavePromptValidation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.SavePrompt(ctx, core.PromptDraft{Content: "", Category: "Work"})
	assert.True(t, core.IsKind(err, core.KindValidation), "got %v", err)

	_, err = m.SavePrompt(ctx, core.PromptDraft{Content: "hi", Category: ""})
	assert.True(t, core.IsKind(err, core.KindValidation), "got %v", err)

	long := strings.Repeat("x", core.MaxTitleLength+1)
	_, err = m.SavePrompt(ctx, core.PromptDraft{Title: long, Content: "hi", Category: "Work"})
	assert.True(t, core.IsKind(err, core.KindValidation), "got %v", err)
}

func TestSavePromptQuotaFailFast(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// Content large enough that the estimate exceeds the per-record cap.
	huge := strings.Repeat("y", 26_000)
	_, err := m.SavePrompt(ctx, core.PromptDraft{Content: huge, Category: "Work"})
	require.True(t, core.IsKind(err, core.KindQuotaExceeded), "got %v", err)

	// Fail-fast: nothing may have been written.
	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestSavePromptDangerThreshold(t *testing.T) {
	store, err := badgerstore.NewMemoryStore(badgerstore.WithQuota(10_000))
	require.NoError(t, err)
	m := newTestManagerWithStore(t, store)
	ctx := context.Background()

	// Occupy ~95% of the quota, leaving room that a small prompt would fit
	// in physically but not without crossing the danger threshold.
	filler := json.RawMessage(`"` + strings.Repeat("z", 9_490) + `"`)
	require.NoError(t, store.Set(ctx, map[string]json.RawMessage{"filler": filler}))

	draft := core.PromptDraft{Content: strings.Repeat("s", 100), Category: "W"}
	_, err = m.SavePrompt(ctx, draft)
	require.True(t, core.IsKind(err, core.KindQuotaExceeded), "got %v", err)
}

func TestUpdatePrompt(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	clock := &now
	m := newTestManager(t, WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	prompt, err := m.SavePrompt(ctx, core.PromptDraft{Title: "a", Content: "one", Category: "Work"})
	require.NoError(t, err)

	later := time.UnixMilli(2_000_000)
	*clock = later

	title := "b"
	updated, err := m.UpdatePrompt(ctx, prompt.ID, core.PromptPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "b", updated.Title)
	assert.Equal(t, "one", updated.Content)
	assert.Equal(t, later.UnixMilli(), updated.UpdatedAt)
	assert.Equal(t, prompt.CreatedAt, updated.CreatedAt)
	// Title edits are not uses.
	assert.Equal(t, prompt.LastUsedAt, updated.LastUsedAt)

	content := "two"
	updated, err = m.UpdatePrompt(ctx, prompt.ID, core.PromptPatch{Content: &content})
	require.NoError(t, err)
	// Content edits move LastUsedAt.
	assert.Equal(t, later.UnixMilli(), updated.LastUsedAt)
}

func TestUpdatePromptNotFound(t *testing.T) {
	m := newTestManager(t)
	title := "x"
	_, err := m.UpdatePrompt(context.Background(), "missing", core.PromptPatch{Title: &title})
	assert.True(t, core.IsKind(err, core.KindNotFound), "got %v", err)
}

func TestDeletePrompt(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	prompt, err := m.SavePrompt(ctx, core.PromptDraft{Content: "c", Category: "Work"})
	require.NoError(t, err)

	require.NoError(t, m.DeletePrompt(ctx, prompt.ID))

	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	assert.Empty(t, prompts)

	err = m.DeletePrompt(ctx, prompt.ID)
	assert.True(t, core.IsKind(err, core.KindNotFound), "got %v", err)
}

func TestIncrementUsageCount(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	clock := &now
	m := newTestManager(t, WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	prompt, err := m.SavePrompt(ctx, core.PromptDraft{Content: "Hello", Category: core.DefaultCategoryName})
	require.NoError(t, err)

	later := time.UnixMilli(5_000_000)
	*clock = later

	used, err := m.IncrementUsageCount(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used.UsageCount)
	assert.Equal(t, later.UnixMilli(), used.LastUsedAt)
	// Usage is not a content edit.
	assert.Equal(t, prompt.UpdatedAt, used.UpdatedAt)
}

func TestGetPromptsNormalizesLegacyRecords(t *testing.T) {
	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	m := newTestManagerWithStore(t, store)
	ctx := context.Background()

	// A record written by an older version: bad usageCount, no lastUsedAt.
	legacy := json.RawMessage(`[{"id":"old1","title":"t","content":"c","category":"Work","createdAt":500,"updatedAt":500,"usageCount":-3}]`)
	require.NoError(t, store.Set(ctx, map[string]json.RawMessage{storage.KeyPrompts: legacy}))

	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, 0, prompts[0].UsageCount)
	assert.Equal(t, int64(500), prompts[0].LastUsedAt)

	// The migration is persisted: the stored form is normalized too.
	values, err := store.Get(ctx, storage.KeyPrompts)
	require.NoError(t, err)
	stored, err := storage.UnmarshalPrompts(values[storage.KeyPrompts])
	require.NoError(t, err)
	assert.Equal(t, prompts, stored)
}

func TestImportPromptPreservesTimestamps(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	incoming := core.Prompt{
		ID:         "imported-1",
		Title:      "t",
		Content:    "c",
		Category:   "Work",
		CreatedAt:  100,
		UpdatedAt:  200,
		UsageCount: 7,
		LastUsedAt: 300,
	}
	stored, err := m.ImportPrompt(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, incoming, stored)

	// Upsert: importing the same id replaces, not duplicates.
	incoming.Content = "c2"
	_, err = m.ImportPrompt(ctx, incoming)
	require.NoError(t, err)
	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "c2", prompts[0].Content)
	assert.Equal(t, 7, prompts[0].UsageCount)
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	prompt, err := m.SavePrompt(ctx, core.PromptDraft{Title: "old", Content: "old content", Category: "Work"})
	require.NoError(t, err)

	title := "new title"
	content := "new content"

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := m.UpdatePrompt(ctx, prompt.ID, core.PromptPatch{Title: &title})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := m.UpdatePrompt(ctx, prompt.ID, core.PromptPatch{Content: &content})
		assert.NoError(t, err)
	}()
	wg.Wait()

	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	// Both disjoint updates must land; neither writer may clobber the other.
	assert.Equal(t, "new title", prompts[0].Title)
	assert.Equal(t, "new content", prompts[0].Content)
}

func TestConcurrentSavesAllLand(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.SavePrompt(ctx, core.PromptDraft{Content: "c", Category: "Work"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	prompts, err := m.GetPrompts(ctx)
	require.NoError(t, err)
	assert.Len(t, prompts, n)
}
