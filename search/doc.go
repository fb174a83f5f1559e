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


// Package search implements semantic similarity search and recommendations
// over stored embedding records.
//
// Both operations share one pipeline: retrieve a capped candidate window
// from the store, score every candidate by cosine similarity against a
// query vector, filter by threshold, sort descending, truncate. Search
// embeds a query string to obtain the query vector; Recommend synthesizes
// a profile vector from the caller's most recent records and excludes the
// caller's own records from the candidates.
//
// Results are exact only within the candidate window (see
// storage.EmbeddingRepository.ScanCandidates); equal scores are ordered by
// ascending record ID so repeated calls over an unchanged store return
// identical rankings.
package search
