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


// Package storage provides the storage abstraction layer for semsearch.
//
// This package defines the repository interface that decouples storage
// implementation from the search and recommendation logic. It allows
// different storage backends (BadgerDB, in-memory, etc.) to be used
// interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	repo, err := badger.NewEmbeddingRepository(backend)  // returns storage.EmbeddingRepository
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute mock implementations without modification.
//
// # Candidate Scans
//
// ScanCandidates is the only operation that materializes vectors in bulk.
// It returns at most cap records, taken from the store in creation-time
// descending order. Similarity results computed from a scan are exact only
// within that capped window, not across the whole store; the cap is a
// deliberate scale/cost tradeoff.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. Each operation is atomic at
// single-record granularity; concurrent scans may observe different
// point-in-time snapshots across calls.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
