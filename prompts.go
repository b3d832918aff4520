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
	"fmt"
	"strings"

	"github.com/promptkeep/promptkeep/core"
	"github.com/promptkeep/promptkeep/quota"
)

// SavePrompt validates and stores a new prompt. Every quota check runs
// before anything is written; a rejected save leaves storage untouched.
func (m *Manager) SavePrompt(ctx context.Context, draft core.PromptDraft) (core.Prompt, error) {
	var saved core.Prompt
	err := m.locks.WithLock(ctx, lockPrompts, func(ctx context.Context) error {
		if strings.TrimSpace(draft.Content) == "" {
			return core.ValidationError("prompt content cannot be empty")
		}
		if draft.Category == "" {
			return core.ValidationError("prompt category is required")
		}

		// The byte cap is checked before field-length validation so an
		// oversized prompt reports as a quota failure, not a length one.
		estimated := quota.EstimatePromptSize(draft.Title, draft.Content, draft.Category)
		if estimated > core.MaxPromptSizeBytes {
			return core.QuotaError(
				"prompt is too large to store",
				fmt.Sprintf("estimated %d bytes, limit %d", estimated, core.MaxPromptSizeBytes),
			)
		}
		if err := core.ValidatePromptDraft(draft); err != nil {
			return err
		}

		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		if len(prompts) >= core.MaxPromptCount {
			return core.QuotaError(
				"prompt limit reached",
				fmt.Sprintf("the library holds the maximum of %d prompts", core.MaxPromptCount),
			)
		}
		if quota.EstimatePromptsSize(prompts)+estimated > core.MaxTotalSizeBytes {
			return core.QuotaError(
				"prompt storage is full",
				fmt.Sprintf("collection would exceed the %d byte ceiling", core.MaxTotalSizeBytes),
			)
		}

		usage, err := m.store.BytesInUse(ctx)
		if err != nil {
			return normalizeErr(err, "failed to query storage usage")
		}
		if a := quota.Check(estimated, usage, m.store.QuotaBytes()); !a.CanWrite {
			return core.QuotaError("not enough storage space", a.Reason)
		}

		now := m.nowMillis()
		prompt := core.Prompt{
			ID:         core.NewID(),
			Title:      draft.Title,
			Content:    draft.Content,
			Category:   draft.Category,
			CreatedAt:  now,
			UpdatedAt:  now,
			UsageCount: 0,
			LastUsedAt: now,
		}
		if err := m.writePrompts(ctx, append(prompts, prompt)); err != nil {
			return err
		}
		saved = prompt
		m.logger.Debug("prompt saved", "id", prompt.ID, "bytes", estimated)
		return nil
	})
	return saved, err
}

// GetPrompts returns the full collection. Records missing usage metadata
// (written by older versions) are normalized and, if anything changed,
// persisted back, a lazy and idempotent migration.
func (m *Manager) GetPrompts(ctx context.Context) ([]core.Prompt, error) {
	var result []core.Prompt
	err := m.locks.WithLock(ctx, lockPrompts, func(ctx context.Context) error {
		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		changed := 0
		for i := range prompts {
			if normalizePrompt(&prompts[i]) {
				changed++
			}
		}
		if changed > 0 {
			if err := m.writePrompts(ctx, prompts); err != nil {
				return err
			}
			m.logger.Info("migrated prompt records on read", "count", changed)
		}
		result = prompts
		return nil
	})
	return result, err
}

// normalizePrompt fills missing or invalid usage metadata in place and
// reports whether the record changed.
func normalizePrompt(p *core.Prompt) bool {
	changed := false
	if p.UsageCount < 0 {
		p.UsageCount = 0
		changed = true
	}
	if p.LastUsedAt < p.CreatedAt {
		p.LastUsedAt = p.CreatedAt
		changed = true
	}
	if p.UpdatedAt < p.CreatedAt {
		p.UpdatedAt = p.CreatedAt
		changed = true
	}
	return changed
}

// UpdatePrompt merges the supplied fields into the prompt with the given id.
// The quota check runs only when the edit grew the record; shrinking edits
// are never penalized.
func (m *Manager) UpdatePrompt(ctx context.Context, id string, patch core.PromptPatch) (core.Prompt, error) {
	var updated core.Prompt
	err := m.locks.WithLock(ctx, lockPrompts, func(ctx context.Context) error {
		if err := core.ValidatePromptPatch(patch); err != nil {
			return err
		}

		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		idx := findPrompt(prompts, id)
		if idx < 0 {
			return core.NotFoundError("prompt", id)
		}

		prompt := prompts[idx]
		oldSize := quota.EstimatePromptSize(prompt.Title, prompt.Content, prompt.Category)

		now := m.nowMillis()
		if patch.Title != nil {
			prompt.Title = *patch.Title
		}
		if patch.Content != nil && *patch.Content != prompt.Content {
			prompt.Content = *patch.Content
			// A content edit counts as use of the prompt.
			prompt.LastUsedAt = now
		}
		if patch.Category != nil {
			prompt.Category = *patch.Category
		}
		prompt.UpdatedAt = now

		newSize := quota.EstimatePromptSize(prompt.Title, prompt.Content, prompt.Category)
		if newSize > core.MaxPromptSizeBytes {
			return core.QuotaError(
				"prompt is too large to store",
				fmt.Sprintf("estimated %d bytes, limit %d", newSize, core.MaxPromptSizeBytes),
			)
		}
		if newSize > oldSize {
			usage, err := m.store.BytesInUse(ctx)
			if err != nil {
				return normalizeErr(err, "failed to query storage usage")
			}
			if a := quota.Check(newSize-oldSize, usage, m.store.QuotaBytes()); !a.CanWrite {
				return core.QuotaError("not enough storage space", a.Reason)
			}
		}

		prompts[idx] = prompt
		if err := m.writePrompts(ctx, prompts); err != nil {
			return err
		}
		updated = prompt
		return nil
	})
	return updated, err
}

// DeletePrompt removes the prompt with the given id.
func (m *Manager) DeletePrompt(ctx context.Context, id string) error {
	return m.locks.WithLock(ctx, lockPrompts, func(ctx context.Context) error {
		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		kept := prompts[:0]
		for _, p := range prompts {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(prompts) {
			return core.NotFoundError("prompt", id)
		}
		return m.writePrompts(ctx, kept)
	})
}

// IncrementUsageCount records one use of the prompt: UsageCount and
// LastUsedAt move, UpdatedAt does not; usage is not a content edit.
func (m *Manager) IncrementUsageCount(ctx context.Context, id string) (core.Prompt, error) {
	var updated core.Prompt
	err := m.locks.WithLock(ctx, lockPrompts, func(ctx context.Context) error {
		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		idx := findPrompt(prompts, id)
		if idx < 0 {
			return core.NotFoundError("prompt", id)
		}
		prompts[idx].UsageCount++
		prompts[idx].LastUsedAt = m.nowMillis()
		if err := m.writePrompts(ctx, prompts); err != nil {
			return err
		}
		updated = prompts[idx]
		return nil
	})
	return updated, err
}

// ImportPrompt upserts a prompt by id, preserving its supplied timestamps
// and usage count instead of resetting them. Used by the import flow.
func (m *Manager) ImportPrompt(ctx context.Context, prompt core.Prompt) (core.Prompt, error) {
	var stored core.Prompt
	err := m.locks.WithLock(ctx, lockPrompts, func(ctx context.Context) error {
		if err := core.ValidatePromptDraft(core.PromptDraft{
			Title:    prompt.Title,
			Content:  prompt.Content,
			Category: prompt.Category,
		}); err != nil {
			return err
		}
		estimated := quota.EstimatePromptSize(prompt.Title, prompt.Content, prompt.Category)
		if estimated > core.MaxPromptSizeBytes {
			return core.QuotaError(
				"prompt is too large to store",
				fmt.Sprintf("estimated %d bytes, limit %d", estimated, core.MaxPromptSizeBytes),
			)
		}

		if prompt.ID == "" {
			prompt.ID = core.NewID()
		}
		if prompt.CreatedAt == 0 {
			prompt.CreatedAt = m.nowMillis()
		}
		normalizePrompt(&prompt)

		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		if idx := findPrompt(prompts, prompt.ID); idx >= 0 {
			prompts[idx] = prompt
		} else {
			prompts = append(prompts, prompt)
		}
		if err := m.writePrompts(ctx, prompts); err != nil {
			return err
		}
		stored = prompt
		return nil
	})
	return stored, err
}

func findPrompt(prompts []core.Prompt, id string) int {
	for i := range prompts {
		if prompts[i].ID == id {
			return i
		}
	}
	return -1
}
