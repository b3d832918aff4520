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
	"strings"

	"github.com/promptkeep/promptkeep/core"
)

// SaveCategory validates and stores a new category. Names are
// case-insensitively unique.
func (m *Manager) SaveCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	var saved core.Category
	err := m.locks.WithLock(ctx, lockCategories, func(ctx context.Context) error {
		if err := core.ValidateCategoryDraft(draft); err != nil {
			return err
		}
		categories, err := m.readCategories(ctx)
		if err != nil {
			return err
		}
		if findCategoryByName(categories, draft.Name) >= 0 {
			return core.ValidationErrorf("a category named %q already exists", draft.Name)
		}
		category := core.Category{
			ID:    core.NewID(),
			Name:  draft.Name,
			Color: draft.Color,
		}
		if err := m.writeCategories(ctx, append(categories, category)); err != nil {
			return err
		}
		saved = category
		return nil
	})
	return saved, err
}

// GetCategories returns all categories. If the default category is absent it
// is synthesized at the front of the collection and persisted, so it is
// always present and discoverable first.
func (m *Manager) GetCategories(ctx context.Context) ([]core.Category, error) {
	var result []core.Category
	err := m.locks.WithLock(ctx, lockCategories, func(ctx context.Context) error {
		categories, err := m.readCategories(ctx)
		if err != nil {
			return err
		}
		if findCategoryByName(categories, core.DefaultCategoryName) < 0 {
			sentinel := core.Category{ID: core.NewID(), Name: core.DefaultCategoryName}
			categories = append([]core.Category{sentinel}, categories...)
			if err := m.writeCategories(ctx, categories); err != nil {
				return err
			}
			m.logger.Info("created default category")
		}
		result = categories
		return nil
	})
	return result, err
}

// UpdateCategory merges the supplied fields into the category with the
// given id. A rename cascades to every prompt referencing the old name;
// the two collections are rewritten in a single persistence call under
// both locks so the cascade is atomic to all other callers.
func (m *Manager) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error) {
	// A non-nil name may turn out to be a rename, so both locks are taken
	// up front; lock order is fixed by the registry.
	keys := []string{lockCategories}
	if patch.Name != nil {
		keys = append(keys, lockPrompts)
	}

	var updated core.Category
	err := m.locks.WithLocks(ctx, keys, func(ctx context.Context) error {
		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return core.ValidationError("category name cannot be empty")
			}
			if len([]rune(*patch.Name)) > core.MaxCategoryNameLength {
				return core.ValidationErrorf("category name exceeds %d characters", core.MaxCategoryNameLength)
			}
		}
		if patch.Color != nil && *patch.Color != "" && !core.IsValidColor(*patch.Color) {
			return core.ValidationErrorf("category color %q is not a #rrggbb color", *patch.Color)
		}

		categories, err := m.readCategories(ctx)
		if err != nil {
			return err
		}
		idx := findCategoryByID(categories, id)
		if idx < 0 {
			return core.NotFoundError("category", id)
		}
		category := categories[idx]
		oldName := category.Name

		renamed := false
		if patch.Name != nil && *patch.Name != oldName {
			if oldName == core.DefaultCategoryName {
				return core.ValidationError("the default category cannot be renamed")
			}
			for i, other := range categories {
				if i != idx && strings.EqualFold(other.Name, *patch.Name) {
					return core.ValidationErrorf("a category named %q already exists", *patch.Name)
				}
			}
			category.Name = *patch.Name
			renamed = true
		}
		if patch.Color != nil {
			category.Color = *patch.Color
		}
		categories[idx] = category

		if !renamed {
			if err := m.writeCategories(ctx, categories); err != nil {
				return err
			}
			updated = category
			return nil
		}

		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		now := m.nowMillis()
		moved := 0
		for i := range prompts {
			if prompts[i].Category == oldName {
				prompts[i].Category = category.Name
				prompts[i].UpdatedAt = now
				moved++
			}
		}
		if err := m.writeCategoriesAndPrompts(ctx, categories, prompts); err != nil {
			return err
		}
		m.logger.Debug("category renamed", "id", id, "from", oldName, "to", category.Name, "promptsMoved", moved)
		updated = category
		return nil
	})
	return updated, err
}

// DeleteCategory removes the category with the given id. Prompts that
// referenced it are reassigned to the default category in the same
// persistence call. Deleting the default category is rejected.
func (m *Manager) DeleteCategory(ctx context.Context, id string) error {
	return m.locks.WithLocks(ctx, []string{lockCategories, lockPrompts}, func(ctx context.Context) error {
		categories, err := m.readCategories(ctx)
		if err != nil {
			return err
		}
		idx := findCategoryByID(categories, id)
		if idx < 0 {
			return core.NotFoundError("category", id)
		}
		name := categories[idx].Name
		if name == core.DefaultCategoryName {
			return core.ValidationError("the default category cannot be deleted")
		}
		categories = append(categories[:idx], categories[idx+1:]...)

		prompts, err := m.readPrompts(ctx)
		if err != nil {
			return err
		}
		now := m.nowMillis()
		reassigned := 0
		for i := range prompts {
			if prompts[i].Category == name {
				prompts[i].Category = core.DefaultCategoryName
				prompts[i].UpdatedAt = now
				reassigned++
			}
		}

		if reassigned == 0 {
			return m.writeCategories(ctx, categories)
		}
		if err := m.writeCategoriesAndPrompts(ctx, categories, prompts); err != nil {
			return err
		}
		m.logger.Debug("category deleted", "id", id, "name", name, "promptsReassigned", reassigned)
		return nil
	})
}

// ImportCategory upserts a category by id. If a brand-new category's name
// collides case-insensitively with an existing one, the existing id wins
// and its record is updated in place, preserving prompt cross-references.
func (m *Manager) ImportCategory(ctx context.Context, category core.Category) (core.Category, error) {
	var stored core.Category
	err := m.locks.WithLock(ctx, lockCategories, func(ctx context.Context) error {
		if err := core.ValidateCategoryDraft(core.CategoryDraft{
			Name:  category.Name,
			Color: category.Color,
		}); err != nil {
			return err
		}

		categories, err := m.readCategories(ctx)
		if err != nil {
			return err
		}

		if idx := findCategoryByID(categories, category.ID); idx >= 0 {
			categories[idx].Name = category.Name
			categories[idx].Color = category.Color
			stored = categories[idx]
		} else if idx := findCategoryByName(categories, category.Name); idx >= 0 {
			categories[idx].Color = category.Color
			stored = categories[idx]
		} else {
			if category.ID == "" {
				category.ID = core.NewID()
			}
			categories = append(categories, category)
			stored = category
		}
		return m.writeCategories(ctx, categories)
	})
	return stored, err
}

func findCategoryByID(categories []core.Category, id string) int {
	for i := range categories {
		if categories[i].ID == id {
			return i
		}
	}
	return -1
}

func findCategoryByName(categories []core.Category, name string) int {
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return i
		}
	}
	return -1
}
