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
	"errors"
	"fmt"
)

// Kind tags an Error with its failure category so callers can match
// exhaustively instead of inspecting messages.
type Kind int

const (
	// KindQuotaExceeded indicates a write was refused because it would
	// overflow capacity, cross the danger threshold, or exceed a record,
	// size, or count cap. Raised before any write is attempted.
	KindQuotaExceeded Kind = iota + 1

	// KindValidation indicates malformed input: empty or over-length fields,
	// duplicate names, invalid colors, or broken referential integrity.
	KindValidation

	// KindNotFound indicates the referenced id does not exist.
	KindNotFound

	// KindDataCorruption indicates an unparseable or structurally
	// unrecognizable payload.
	KindDataCorruption

	// KindStorageUnavailable indicates the backing store is unreachable or
	// failed in an unexpected way.
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDataCorruption:
		return "data_corruption"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is the single structured error value crossing the manager boundary.
// Message is suitable for direct display; Details carries supplementary
// diagnostics such as collected validation violations.
type Error struct {
	Kind    Kind
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports kind equality, so errors.Is(err, &Error{Kind: k}) matches any
// error of that kind regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// QuotaError reports a refused write. details may be empty.
func QuotaError(message, details string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message, Details: details}
}

// ValidationError reports malformed input.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationErrorf reports malformed input with a formatted message.
func ValidationErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing entity.
func NotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: "id " + id,
	}
}

// CorruptionError reports an unparseable payload.
func CorruptionError(message string, cause error) *Error {
	return &Error{Kind: KindDataCorruption, Message: message, cause: cause}
}

// UnavailableError reports a backing-store failure.
func UnavailableError(message string, cause error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: message, cause: cause}
}

// WithDetails returns a copy of e carrying the given details.
func (e *Error) WithDetails(details string) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// WithCause returns a copy of e wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

// IsKind reports whether err is (or wraps) a core.Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// ErrorKind extracts the kind from err, if it carries one.
func ErrorKind(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
