package docsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.Index())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("without embeddings", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory(), WithoutEmbeddings())
		require.NoError(t, err)
		defer db.Close()
		assert.Nil(t, db.provider)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})
}

func TestDatabase_IndexRebuildOnOpen(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "rebuild_db")
	ctx := context.Background()

	db, err := NewDatabase(tmpDir, WithoutEmbeddings())
	require.NoError(t, err)

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)

	document, err := pipeline.Ingest(ctx, "persisted.txt", "Text that survives a reopen.", nil)
	require.NoError(t, err)
	require.NotNil(t, document)
	pipeline.Release()

	chunks, err := db.ChunkRepository().GetChunksByDocument(ctx, document.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Attach a vector directly so the reopen has something to rebuild.
	vector := []float32{0.5, 0.5, 0.5}
	require.NoError(t, db.ChunkRepository().PutVector(ctx, chunks[0].Id, vector))
	require.NoError(t, db.Close())

	reopened, err := NewDatabase(tmpDir, WithoutEmbeddings())
	require.NoError(t, err)
	defer reopened.Close()

	matches := reopened.Index().Query(vector, 1)
	require.Len(t, matches, 1)
	assert.Equal(t, chunks[0].Id, matches[0].ChunkId)
}

func TestDatabase_RemoveDocument(t *testing.T) {
	ctx := context.Background()
	db, err := NewDatabase("", WithInMemory(), WithoutEmbeddings())
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	document, err := pipeline.Ingest(ctx, "doomed.txt", "Chunked text destined for deletion.", nil)
	require.NoError(t, err)

	chunks, err := db.ChunkRepository().GetChunksByDocument(ctx, document.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	vector := []float32{1, 0, 0}
	require.NoError(t, db.ChunkRepository().PutVector(ctx, chunks[0].Id, vector))
	db.Index().Upsert(chunks[0].Id, vector)

	require.NoError(t, db.RemoveDocument(ctx, document.Id))

	remaining, err := db.ChunkRepository().ListChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Empty(t, db.Index().Query(vector, 1))
}

func TestChunkText(t *testing.T) {
	pieces := ChunkText("A short sentence. Another short sentence.", 0, 0)
	require.Len(t, pieces, 1)
	assert.Equal(t, "A short sentence. Another short sentence.", pieces[0])

	pieces = ChunkText("Sentence one. Sentence two. Sentence three.", 2, 0)
	assert.Len(t, pieces, 3)

	assert.Empty(t, ChunkText("   \n  ", 0, 0))
}
