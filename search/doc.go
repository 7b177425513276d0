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


// Package search answers natural-language queries over stored document chunks.
//
// The Searcher type decides between two scoring paths per query:
//
//   - Semantic: the query is embedded and matched against the similarity
//     index by cosine similarity.
//   - Lexical: a deterministic word-overlap scorer over all stored chunks,
//     used when no embedding provider is configured, the embedding call
//     fails or times out, or no semantic match clears the threshold.
//
// The two paths produce scores on incompatible scales, so a result list is
// always mode-pure: one query, one path, end to end. Each result carries a
// bounded excerpt centered on the best match, built by BuildExcerpt.
package search
