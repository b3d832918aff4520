package core

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryName is the protected sentinel category. Exactly one
// category carries this name at all times; it cannot be renamed or deleted.
const DefaultCategoryName = "Uncategorized"

// Field and collection limits enforced before any write is attempted.
const (
	MaxTitleLength        = 100
	MaxContentLength      = 20000
	MaxCategoryNameLength = 50

	// MaxPromptSizeBytes caps the estimated serialized size of a single prompt.
	MaxPromptSizeBytes = 50_000

	// MaxTotalSizeBytes is a soft ceiling on the estimated size of the whole
	// prompts collection, kept below the backing store's typical quota so
	// categories and settings always have headroom.
	MaxTotalSizeBytes = 8_000_000

	MaxPromptCount = 5000
)

// Prompt is a stored reusable text snippet. Timestamps are epoch
// milliseconds; UpdatedAt and LastUsedAt are never earlier than CreatedAt.
type Prompt struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Category   string `json:"category"` // name, not id, of an existing Category
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
	UsageCount int    `json:"usageCount"`
	LastUsedAt int64  `json:"lastUsedAt"`
}

// Category is a named, optionally colored tag used to organize prompts.
// Names are case-insensitively unique.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"` // "#rrggbb" when set
}

// Settings is the single persisted preferences record. It is never deleted,
// only merged field by field.
type Settings struct {
	DefaultCategory string `json:"defaultCategory"`
	SortBy          string `json:"sortBy"`
	SortOrder       string `json:"sortOrder"`
	Theme           string `json:"theme"`
	InterfaceMode   string `json:"interfaceMode"`
}

// DefaultSettings returns the value read when no settings record exists yet.
func DefaultSettings() Settings {
	return Settings{
		DefaultCategory: DefaultCategoryName,
		SortBy:          "updatedAt",
		SortOrder:       "desc",
		Theme:           "system",
		InterfaceMode:   "standard",
	}
}

// Snapshot is the complete export/import envelope.
type Snapshot struct {
	Prompts    []Prompt   `json:"prompts"`
	Categories []Category `json:"categories"`
	Settings   Settings   `json:"settings"`
}

// PromptDraft carries the caller-supplied fields of a new prompt.
type PromptDraft struct {
	Title    string
	Content  string
	Category string
}

// PromptPatch is a partial prompt update; nil fields are left unchanged.
type PromptPatch struct {
	Title    *string
	Content  *string
	Category *string
}

// CategoryDraft carries the caller-supplied fields of a new category.
type CategoryDraft struct {
	Name  string
	Color string
}

// CategoryPatch is a partial category update; nil fields are left unchanged.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	DefaultCategory *string
	SortBy          *string
	SortOrder       *string
	Theme           *string
	InterfaceMode   *string
}

// NewID generates an opaque unique identifier for a prompt or category.
func NewID() string {
	return uuid.NewString()
}

// NowMillis returns the given time as epoch milliseconds.
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}
