// Copyright 2025 Relevano Labs
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

import "fmt"

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - CompanyName must not be empty
//   - SourceText must not be empty
//   - OwnerId must not be empty
//
// NOT validated:
//   - Vector (populated by the embedder, may be empty before embedding)
//   - ID (0 is valid before the database sequence assigns one)
//   - Metadata (opaque to the engine)
func ValidateEmbeddingRecord(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.CompanyName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyCompanyName)
	}

	if record.SourceText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptySourceText)
	}

	if record.OwnerId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyOwner)
	}

	return nil
}
