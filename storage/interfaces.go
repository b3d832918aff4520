package storage

import (
	"context"
	"encoding/json"
)

// Top-level keys in the backing store. There is no version field; schema
// evolution relies on tolerant reads plus lazy migration on read.
const (
	KeyPrompts    = "prompts"
	KeyCategories = "categories"
	KeySettings   = "settings"
)

// KeyValueStore is the asynchronous, process-wide, size-constrained
// persistent map the manager treats as the sole source of truth.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	// Get retrieves the values for the given keys. Keys with no stored
	// value are absent from the result; this is not an error.
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)

	// Set stores every entry in one call. Returns ErrQuotaExceeded when the
	// write would push total usage past QuotaBytes; in that case nothing is
	// written.
	Set(ctx context.Context, entries map[string]json.RawMessage) error

	// Clear removes every key.
	Clear(ctx context.Context) error

	// BytesInUse reports the total serialized size currently stored.
	BytesInUse(ctx context.Context) (int64, error)

	// QuotaBytes is the fixed total capacity of the store.
	QuotaBytes() int64

	// Close releases the underlying resources.
	Close() error
}
