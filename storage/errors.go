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


package storage

import "errors"

var (
	// ErrQuotaExceeded indicates a write was refused at the store level
	// because it would exceed total capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStoreClosed indicates the backing store is closed.
	ErrStoreClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a value could not be encoded or
	// decoded as JSON.
	ErrSerializationFailed = errors.New("serialization failed")
)
