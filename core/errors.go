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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates an EmbeddingRecord failed validation.
	ErrInvalidRecord = errors.New("invalid embedding record")

	// ErrEmptyCompanyName indicates the CompanyName field is empty.
	ErrEmptyCompanyName = errors.New("company name cannot be empty")

	// ErrEmptySourceText indicates the SourceText field is empty.
	ErrEmptySourceText = errors.New("source text cannot be empty")

	// ErrEmptyOwner indicates the OwnerId field is empty.
	ErrEmptyOwner = errors.New("owner id cannot be empty")

	// ErrDimensionMismatch indicates two vectors of different lengths were
	// compared. This is a programming or data error and is never tolerated
	// silently.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector indicates a vector operation received no input vectors.
	ErrEmptyVector = errors.New("no vectors provided")
)
