// Copyright 2025 Poiesic Systems
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


// Package ai defines the embedding provider abstraction consumed by the
// ingestion pipeline and the searcher.
//
// The Embedder interface converts text into fixed-length numeric vectors.
// Concrete implementations live in subpackages: ai/openai talks to any
// OpenAI-compatible embedding API, and ai/mock provides deterministic test
// doubles. A nil Provider means embeddings are disabled; the system then
// operates in lexical-only search mode.
package ai
