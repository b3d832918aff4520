// Package quota estimates serialized sizes and decides whether a
// prospective write may be admitted, without performing the write.
// All functions are pure.
package quota

import (
	"fmt"
	"unicode/utf8"

	"github.com/promptkeep/promptkeep/core"
)

const (
	// promptOverheadBytes accounts for the id, timestamps, usage counter,
	// and JSON punctuation of a serialized prompt record.
	promptOverheadBytes = 160

	// bytesPerChar is a conservative worst case for UTF-16/UTF-8 text.
	bytesPerChar = 2

	// DangerThresholdPercent is the post-write usage ratio above which
	// writes are refused even when space is physically available.
	DangerThresholdPercent = 98.0
)

// Advisory usage bands. They inform warnings only; admission is decided
// solely by raw overflow and the danger threshold.
type UsageLevel int

const (
	LevelSafe     UsageLevel = iota // < 70%
	LevelWarning                    // 70–85%
	LevelCritical                   // 85–95%
	LevelDanger                     // >= 95%
)

func (l UsageLevel) String() string {
	switch l {
	case LevelSafe:
		return "safe"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Level maps a usage percentage to its advisory band.
func Level(percent float64) UsageLevel {
	switch {
	case percent >= 95:
		return LevelDanger
	case percent >= 85:
		return LevelCritical
	case percent >= 70:
		return LevelWarning
	default:
		return LevelSafe
	}
}

// EstimatePromptSize estimates the serialized byte size of a single prompt
// from its string fields: fixed per-record overhead plus two bytes per
// character of each field.
func EstimatePromptSize(title, content, category string) int64 {
	chars := utf8.RuneCountInString(title) +
		utf8.RuneCountInString(content) +
		utf8.RuneCountInString(category)
	return promptOverheadBytes + int64(chars)*bytesPerChar
}

// EstimatePromptsSize estimates the serialized size of a whole collection.
func EstimatePromptsSize(prompts []core.Prompt) int64 {
	var total int64
	for _, p := range prompts {
		total += EstimatePromptSize(p.Title, p.Content, p.Category)
	}
	return total
}

// Availability is the outcome of an admission check.
type Availability struct {
	CanWrite          bool
	Available         int64
	AfterWrite        int64
	PercentAfterWrite float64
	Reason            string // set when CanWrite is false
}

// Check decides whether a write of estimatedSize may be admitted given the
// current usage and total quota. It refuses on raw capacity overflow and
// when the post-write usage ratio would cross the danger threshold.
func Check(estimatedSize, currentUsage, totalQuota int64) Availability {
	available := totalQuota - currentUsage
	if available < 0 {
		available = 0
	}
	afterWrite := currentUsage + estimatedSize
	percent := 0.0
	if totalQuota > 0 {
		percent = float64(afterWrite) / float64(totalQuota) * 100
	}

	a := Availability{
		Available:         available,
		AfterWrite:        afterWrite,
		PercentAfterWrite: percent,
	}

	if estimatedSize > available {
		a.Reason = fmt.Sprintf("write of %d bytes exceeds the %d bytes available", estimatedSize, available)
		return a
	}
	if percent > DangerThresholdPercent {
		a.Reason = fmt.Sprintf("write would bring storage to %.1f%% of quota", percent)
		return a
	}

	a.CanWrite = true
	return a
}
