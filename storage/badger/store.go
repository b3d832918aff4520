package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptkeep/promptkeep/storage"
)

// DefaultQuotaBytes is the default total capacity, matching the typical
// quota of the browser storage area this store stands in for.
const DefaultQuotaBytes = 10 << 20 // 10 MiB

// Store implements storage.KeyValueStore over BadgerDB.
type Store struct {
	backend *Backend
	quota   int64
}

var _ storage.KeyValueStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithQuota overrides the total byte capacity.
func WithQuota(quota int64) Option {
	return func(s *Store) {
		s.quota = quota
	}
}

// NewStore opens a persistent store at the given path.
func NewStore(path string, opts ...Option) (storage.KeyValueStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend, opts...), nil
}

func newStore(backend *Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		quota:   DefaultQuotaBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves the values for the given keys. Missing keys are absent from
// the result.
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStoreClosed
	}
	result := make(map[string]json.RawMessage, len(keys))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			item, err := tx.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[key] = value
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// setConflictRetries bounds retries when concurrent writers invalidate the
// quota projection's read set.
const setConflictRetries = 3

// Set stores every entry in a single transaction. The write is refused with
// storage.ErrQuotaExceeded when it would push total usage past the quota.
func (s *Store) Set(ctx context.Context, entries map[string]json.RawMessage) error {
	if s.backend.IsClosed() {
		return storage.ErrStoreClosed
	}
	var err error
	for attempt := 0; attempt <= setConflictRetries; attempt++ {
		err = s.trySet(entries)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *Store) trySet(entries map[string]json.RawMessage) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		usage := bytesInUseTx(tx)

		// Project usage after the write, replacing any existing values.
		projected := usage
		for key, value := range entries {
			if item, err := tx.Get([]byte(key)); err == nil {
				projected -= int64(len(item.Key())) + item.ValueSize()
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			projected += int64(len(key)) + int64(len(value))
		}
		if projected > s.quota {
			return fmt.Errorf("%w: %d of %d bytes", storage.ErrQuotaExceeded, projected, s.quota)
		}

		for key, value := range entries {
			if err := tx.Set([]byte(key), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Clear removes every key.
func (s *Store) Clear(ctx context.Context) error {
	if s.backend.IsClosed() {
		return storage.ErrStoreClosed
	}
	return s.backend.DropAll()
}

// BytesInUse reports the total serialized size of all stored keys and values.
func (s *Store) BytesInUse(ctx context.Context) (int64, error) {
	if s.backend.IsClosed() {
		return 0, storage.ErrStoreClosed
	}
	var total int64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		total = bytesInUseTx(tx)
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// QuotaBytes is the fixed total capacity of the store.
func (s *Store) QuotaBytes() int64 {
	return s.quota
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}

func bytesInUseTx(tx *badger.Txn) int64 {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var total int64
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		total += int64(len(item.Key())) + item.ValueSize()
	}
	return total
}
