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


package docsearch

import (
	"context"
	"log/slog"

	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/ai/openai"
	"github.com/poiesic/docsearch/chunker"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/index"
	"github.com/poiesic/docsearch/ingestion"
	"github.com/poiesic/docsearch/search"
	"github.com/poiesic/docsearch/storage"
	"github.com/poiesic/docsearch/storage/badger"
)

type Database struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	chunkRepo    storage.ChunkRepository
	idx          *index.Index
	provider     ai.Provider
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	disableAI bool
	inMemory  bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithoutEmbeddings disables the embedding provider entirely. Ingested
// documents get no vectors and every search runs on the lexical path.
func WithoutEmbeddings() DatabaseOption {
	return func(o *databaseOptions) {
		o.disableAI = true
	}
}

// WithInMemory keeps all data in memory instead of on disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// The similarity index lives in memory and is rebuilt from the
	// stored vectors on every open.
	idx, err := index.New()
	if err != nil {
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}
	if err := rebuildIndex(context.Background(), chunkRepo, idx); err != nil {
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create the embedding provider unless embeddings are disabled.
	// That decision is taken once here; searches and ingestion never
	// probe for a provider per operation.
	var provider ai.Provider
	if !options.disableAI {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:      backend,
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		idx:          idx,
		provider:     provider,
		logger:       slog.Default(),
	}, nil
}

// rebuildIndex loads every stored vector into the similarity index.
// Chunks without vectors are skipped; they are served lexically.
func rebuildIndex(ctx context.Context, chunkRepo storage.ChunkRepository, idx *index.Index) error {
	chunks, err := chunkRepo.ListChunks(ctx)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}
		idx.Upsert(chunk.Id, chunk.Vector)
	}
	return nil
}

func (db *Database) Close() error {
	// Close the embedding provider first
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing embedding provider", "err", err)
		}
	}

	// Close repositories
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) Index() *index.Index {
	return db.idx
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documentRepo, db.chunkRepo, db.provider, db.idx, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.documentRepo, db.chunkRepo, db.idx, db.provider, opts...)
}

// RemoveDocument deletes a document and its chunks from storage and drops
// the chunks from the similarity index.
func (db *Database) RemoveDocument(ctx context.Context, id core.ID) error {
	removed, err := db.documentRepo.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	for _, chunkId := range removed {
		db.idx.Remove(chunkId)
	}
	return nil
}

// ChunkText splits text with the given chunking parameters. A non-positive
// target falls back to the chunker default. It is a convenience for callers
// that want to preview chunk boundaries without storing anything.
func ChunkText(text string, targetWords, overlapWords int) []string {
	return chunker.New(targetWords, overlapWords).Chunk(text)
}
