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

import (
	"encoding/json"
	"fmt"

	"github.com/promptkeep/promptkeep/core"
)

// MarshalPrompts serializes a prompt collection for storage.
func MarshalPrompts(prompts []core.Prompt) (json.RawMessage, error) {
	if prompts == nil {
		prompts = []core.Prompt{}
	}
	data, err := json.Marshal(prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: prompts: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalPrompts deserializes a prompt collection. A nil value reads as an
// empty collection.
func UnmarshalPrompts(data json.RawMessage) ([]core.Prompt, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var prompts []core.Prompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("%w: prompts: %w", ErrSerializationFailed, err)
	}
	return prompts, nil
}

// MarshalCategories serializes a category collection for storage.
func MarshalCategories(categories []core.Category) (json.RawMessage, error) {
	if categories == nil {
		categories = []core.Category{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("%w: categories: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalCategories deserializes a category collection. A nil value reads
// as an empty collection.
func UnmarshalCategories(data json.RawMessage) ([]core.Category, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var categories []core.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("%w: categories: %w", ErrSerializationFailed, err)
	}
	return categories, nil
}

// MarshalSettings serializes the settings record for storage.
func MarshalSettings(settings core.Settings) (json.RawMessage, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: settings: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalSettings deserializes the settings record. A nil value reads as
// the defaults; missing fields keep their default values (tolerant read).
func UnmarshalSettings(data json.RawMessage) (core.Settings, error) {
	settings := core.DefaultSettings()
	if len(data) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return core.Settings{}, fmt.Errorf("%w: settings: %w", ErrSerializationFailed, err)
	}
	return settings, nil
}
