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


// Package storage defines the backing-store abstraction for promptkeep.
//
// The KeyValueStore interface decouples the storage manager from the
// concrete backend. The library ships a BadgerDB implementation in
// storage/badger; alternative backends only need to honor the same
// contract: string keys mapped to JSON values, a fixed byte quota, bulk
// clear, and usage reporting.
//
// # Constructor Return Type Pattern
//
// Public constructors return the KeyValueStore interface rather than the
// concrete type:
//
//	store, err := badger.NewStore(path)  // returns storage.KeyValueStore
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute in-memory or fault-injecting implementations without
// modification.
//
// # Persisted layout
//
// Exactly three top-level keys are used: "prompts" (array of Prompt),
// "categories" (array of Category), and "settings" (single Settings
// object). Values are JSON. There is no version field; missing optional
// fields default on read and records are lazily migrated by the manager.
//
// # Thread Safety
//
// KeyValueStore implementations must be safe for concurrent use. Note that
// the store provides no read-modify-write atomicity across calls; callers
// needing it serialize through the locking package.
package storage
