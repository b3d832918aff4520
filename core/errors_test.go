package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{QuotaError("full", ""), KindQuotaExceeded},
		{ValidationError("bad"), KindValidation},
		{NotFoundError("prompt", "p1"), KindNotFound},
		{CorruptionError("garbage", nil), KindDataCorruption},
		{UnavailableError("down", nil), KindStorageUnavailable},
	}
	for _, c := range cases {
		if !IsKind(c.err, c.kind) {
			t.Errorf("expected %v to have kind %v", c.err, c.kind)
		}
		kind, ok := ErrorKind(c.err)
		if !ok || kind != c.kind {
			t.Errorf("ErrorKind(%v) = %v, %v", c.err, kind, ok)
		}
	}
}

func TestErrorKindSurvivesWrapping(t *testing.T) {
	inner := NotFoundError("category", "c9")
	wrapped := fmt.Errorf("while deleting: %w", inner)
	if !IsKind(wrapped, KindNotFound) {
		t.Fatal("kind lost through wrapping")
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := UnavailableError("storage failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
}

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := QuotaError("not enough space", "needs 10 bytes")
	if got := err.Error(); got != "not enough space: needs 10 bytes" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := ValidationError("category name cannot be empty")
	if !errors.Is(err, &Error{Kind: KindValidation}) {
		t.Fatal("kind-only target should match")
	}
	if errors.Is(err, &Error{Kind: KindNotFound}) {
		t.Fatal("different kind must not match")
	}
}
