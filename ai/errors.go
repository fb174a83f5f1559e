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


package ai

import "errors"

var (
	// ErrEmbeddingFailed indicates the embedding provider could not produce
	// a vector (quota, network, malformed input). Operations that depend on
	// a fresh embedding fail as a whole when this occurs.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)
