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


// Package ai provides the embedding abstraction used by semsearch.
//
// The core engine depends on the Embedder interface rather than any
// concrete provider; the openai subpackage implements it against
// OpenAI-compatible embedding APIs, and the mock subpackage provides a
// deterministic test double.
//
// Embedding failures are wrapped with ErrEmbeddingFailed so callers can
// classify them without inspecting provider-specific errors. Failed
// embedding calls are not retried here; retrying is the caller's decision.
package ai
