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


package core

import (
	"fmt"
	"regexp"
	"strings"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsValidColor reports whether s is a 6-hex-digit color string.
func IsValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// ValidatePromptDraft validates a new prompt's caller-supplied fields.
//
// Validation rules:
//   - Content must not be empty and must not exceed MaxContentLength
//   - Title may be empty but must not exceed MaxTitleLength
//   - Category name must not be empty
//
// The first violation short-circuits.
func ValidatePromptDraft(d PromptDraft) error {
	if strings.TrimSpace(d.Content) == "" {
		return ValidationError("prompt content cannot be empty")
	}
	if len([]rune(d.Content)) > MaxContentLength {
		return ValidationErrorf("prompt content exceeds %d characters", MaxContentLength)
	}
	if len([]rune(d.Title)) > MaxTitleLength {
		return ValidationErrorf("prompt title exceeds %d characters", MaxTitleLength)
	}
	if d.Category == "" {
		return ValidationError("prompt category is required")
	}
	return nil
}

// ValidatePromptPatch validates the supplied fields of a partial update.
func ValidatePromptPatch(p PromptPatch) error {
	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return ValidationError("prompt content cannot be empty")
		}
		if len([]rune(*p.Content)) > MaxContentLength {
			return ValidationErrorf("prompt content exceeds %d characters", MaxContentLength)
		}
	}
	if p.Title != nil && len([]rune(*p.Title)) > MaxTitleLength {
		return ValidationErrorf("prompt title exceeds %d characters", MaxTitleLength)
	}
	if p.Category != nil && *p.Category == "" {
		return ValidationError("prompt category cannot be empty")
	}
	return nil
}

// ValidateCategoryDraft validates a new category's caller-supplied fields.
func ValidateCategoryDraft(d CategoryDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError("category name cannot be empty")
	}
	if len([]rune(d.Name)) > MaxCategoryNameLength {
		return ValidationErrorf("category name exceeds %d characters", MaxCategoryNameLength)
	}
	if d.Color != "" && !IsValidColor(d.Color) {
		return ValidationErrorf("category color %q is not a #rrggbb color", d.Color)
	}
	return nil
}

// Violation is a single structural problem found in an import snapshot.
type Violation struct {
	Entity  string // "prompt", "category", "settings"
	ID      string // offending id or name, may be empty
	Message string
}

func (v Violation) String() string {
	if v.ID != "" {
		return fmt.Sprintf("%s %s: %s", v.Entity, v.ID, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Entity, v.Message)
}

// ValidateSnapshot structurally validates an import snapshot, collecting
// every violation rather than stopping at the first so a broken import can
// be fixed in one pass.
//
// Checked invariants:
//   - prompts: non-empty id and content, field length caps, unique ids,
//     category referencing a category name present in the snapshot
//   - categories: non-empty id and name, length cap, valid color,
//     case-insensitively unique names
func ValidateSnapshot(s Snapshot) []Violation {
	var violations []Violation

	names := make(map[string]bool, len(s.Categories))
	catIDs := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		switch {
		case c.ID == "":
			violations = append(violations, Violation{"category", c.Name, "missing id"})
		case catIDs[c.ID]:
			violations = append(violations, Violation{"category", c.ID, "duplicate id"})
		default:
			catIDs[c.ID] = true
		}
		if strings.TrimSpace(c.Name) == "" {
			violations = append(violations, Violation{"category", c.ID, "missing name"})
			continue
		}
		if len([]rune(c.Name)) > MaxCategoryNameLength {
			violations = append(violations, Violation{"category", c.Name, fmt.Sprintf("name exceeds %d characters", MaxCategoryNameLength)})
		}
		if c.Color != "" && !IsValidColor(c.Color) {
			violations = append(violations, Violation{"category", c.Name, "invalid color " + c.Color})
		}
		folded := strings.ToLower(c.Name)
		if names[folded] {
			violations = append(violations, Violation{"category", c.Name, "duplicate name"})
		}
		names[folded] = true
	}

	promptIDs := make(map[string]bool, len(s.Prompts))
	for _, p := range s.Prompts {
		switch {
		case p.ID == "":
			violations = append(violations, Violation{"prompt", p.Title, "missing id"})
		case promptIDs[p.ID]:
			violations = append(violations, Violation{"prompt", p.ID, "duplicate id"})
		default:
			promptIDs[p.ID] = true
		}
		if strings.TrimSpace(p.Content) == "" {
			violations = append(violations, Violation{"prompt", p.ID, "missing content"})
		} else if len([]rune(p.Content)) > MaxContentLength {
			violations = append(violations, Violation{"prompt", p.ID, fmt.Sprintf("content exceeds %d characters", MaxContentLength)})
		}
		if len([]rune(p.Title)) > MaxTitleLength {
			violations = append(violations, Violation{"prompt", p.ID, fmt.Sprintf("title exceeds %d characters", MaxTitleLength)})
		}
		if p.Category == "" {
			violations = append(violations, Violation{"prompt", p.ID, "missing category"})
		} else if !names[strings.ToLower(p.Category)] {
			violations = append(violations, Violation{"prompt", p.ID, fmt.Sprintf("references unknown category %q", p.Category)})
		}
	}

	return violations
}

// SnapshotError folds collected violations into a single validation error
// whose details list every problem.
func SnapshotError(violations []Violation) *Error {
	lines := make([]string, len(violations))
	for i, v := range violations {
		lines[i] = v.String()
	}
	return ValidationError("import snapshot failed validation").WithDetails(strings.Join(lines, "; "))
}
