package quota

import (
	"testing"

	"github.com/promptkeep/promptkeep/core"
)

func TestEstimatePromptSizeDeterministic(t *testing.T) {
	a := EstimatePromptSize("title", "some content", "Work")
	b := EstimatePromptSize("title", "some content", "Work")
	if a != b {
		t.Fatalf("expected deterministic estimate, got %d and %d", a, b)
	}
	if a <= 0 {
		t.Fatalf("expected positive estimate, got %d", a)
	}
}

func TestEstimatePromptSizeGrowsWithContent(t *testing.T) {
	small := EstimatePromptSize("t", "short", "c")
	large := EstimatePromptSize("t", "a much longer piece of content", "c")
	if large <= small {
		t.Fatalf("expected larger content to estimate larger: %d vs %d", small, large)
	}
	// Two bytes per extra character.
	base := EstimatePromptSize("", "", "")
	one := EstimatePromptSize("", "x", "")
	if one-base != 2 {
		t.Fatalf("expected 2 bytes per character, got %d", one-base)
	}
}

func TestEstimatePromptsSizeSums(t *testing.T) {
	prompts := []core.Prompt{
		{Title: "a", Content: "one", Category: "c"},
		{Title: "b", Content: "two", Category: "c"},
	}
	want := EstimatePromptSize("a", "one", "c") + EstimatePromptSize("b", "two", "c")
	if got := EstimatePromptsSize(prompts); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestCheckAdmits(t *testing.T) {
	a := Check(1000, 0, 10_000)
	if !a.CanWrite {
		t.Fatalf("expected admission, got reason %q", a.Reason)
	}
	if a.Available != 10_000 || a.AfterWrite != 1000 {
		t.Fatalf("unexpected accounting: %+v", a)
	}
}

func TestCheckRejectsOverflow(t *testing.T) {
	a := Check(2000, 9000, 10_000)
	if a.CanWrite {
		t.Fatal("expected rejection on overflow")
	}
	if a.Reason == "" {
		t.Fatal("expected a reason")
	}
}

func TestCheckRejectsDangerThreshold(t *testing.T) {
	// 990 of 1000 available, but post-write usage would be 99%.
	a := Check(980, 10, 1000)
	if a.CanWrite {
		t.Fatalf("expected danger-threshold rejection at %.1f%%", a.PercentAfterWrite)
	}
}

func TestLevelBands(t *testing.T) {
	cases := []struct {
		percent float64
		want    UsageLevel
	}{
		{0, LevelSafe},
		{69.9, LevelSafe},
		{70, LevelWarning},
		{84.9, LevelWarning},
		{85, LevelCritical},
		{94.9, LevelCritical},
		{95, LevelDanger},
		{100, LevelDanger},
	}
	for _, c := range cases {
		if got := Level(c.percent); got != c.want {
			t.Errorf("Level(%v) = %v, want %v", c.percent, got, c.want)
		}
	}
}
