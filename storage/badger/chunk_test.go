package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestDocument(t *testing.T, documentRepo storage.DocumentRepository, filename, contents string) *core.Document {
	t.Helper()
	doc, err := documentRepo.AddDocument(context.Background(), newTestDocument(filename, contents))
	require.NoError(t, err)
	return doc
}

func TestAddChunks(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()
	doc := addTestDocument(t, documentRepo, "chunks.txt", "some source text")

	t.Run("assigns ascending IDs and timestamps", func(t *testing.T) {
		added, err := chunkRepo.AddChunks(ctx,
			&core.Chunk{DocumentId: doc.Id, Ordinal: 0, Contents: "alpha"},
			&core.Chunk{DocumentId: doc.Id, Ordinal: 1, Contents: "beta"},
			&core.Chunk{DocumentId: doc.Id, Ordinal: 2, Contents: "gamma"},
		)
		require.NoError(t, err)
		require.Len(t, added, 3)
		assert.Less(t, added[0].Id, added[1].Id)
		assert.Less(t, added[1].Id, added[2].Id)
		for _, chunk := range added {
			assert.NotZero(t, chunk.Id)
			assert.False(t, chunk.InsertedAt.IsZero())
		}
	})

	t.Run("rejects invalid chunk before writing any", func(t *testing.T) {
		before, err := chunkRepo.ListChunks(ctx)
		require.NoError(t, err)

		_, err = chunkRepo.AddChunks(ctx,
			&core.Chunk{DocumentId: doc.Id, Ordinal: 0, Contents: "valid"},
			&core.Chunk{DocumentId: doc.Id, Ordinal: 1, Contents: "   "},
		)
		assert.ErrorIs(t, err, core.ErrInvalidChunk)

		after, err := chunkRepo.ListChunks(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})
}

func TestGetChunk(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()
	doc := addTestDocument(t, documentRepo, "get-chunk.txt", "text")

	added, err := chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: doc.Id, Ordinal: 0, Contents: "text"})
	require.NoError(t, err)

	got, err := chunkRepo.GetChunk(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "text", got.Contents)
	assert.Equal(t, doc.Id, got.DocumentId)

	_, err = chunkRepo.GetChunk(ctx, core.ID(9999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListChunks_InsertionOrder(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()
	docA := addTestDocument(t, documentRepo, "a.txt", "a text")
	docB := addTestDocument(t, documentRepo, "b.txt", "b text")

	first, err := chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: docA.Id, Ordinal: 0, Contents: "first"})
	require.NoError(t, err)
	second, err := chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: docB.Id, Ordinal: 0, Contents: "second"})
	require.NoError(t, err)
	third, err := chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: docA.Id, Ordinal: 1, Contents: "third"})
	require.NoError(t, err)

	chunks, err := chunkRepo.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, first[0].Id, chunks[0].Id)
	assert.Equal(t, second[0].Id, chunks[1].Id)
	assert.Equal(t, third[0].Id, chunks[2].Id)
}

func TestGetChunksByDocument(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()
	docA := addTestDocument(t, documentRepo, "doc-a.txt", "a text")
	docB := addTestDocument(t, documentRepo, "doc-b.txt", "b text")

	_, err := chunkRepo.AddChunks(ctx,
		&core.Chunk{DocumentId: docA.Id, Ordinal: 0, Contents: "a zero"},
		&core.Chunk{DocumentId: docA.Id, Ordinal: 1, Contents: "a one"},
	)
	require.NoError(t, err)
	_, err = chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: docB.Id, Ordinal: 0, Contents: "b zero"})
	require.NoError(t, err)

	chunks, err := chunkRepo.GetChunksByDocument(ctx, docA.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 1, chunks[1].Ordinal)
}

func TestVectorRoundTrip(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()
	doc := addTestDocument(t, documentRepo, "vec.txt", "vector text")

	added, err := chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: doc.Id, Ordinal: 0, Contents: "vector text"})
	require.NoError(t, err)
	chunkId := added[0].Id

	t.Run("absent vector is nil", func(t *testing.T) {
		vector, err := chunkRepo.GetVector(ctx, chunkId)
		require.NoError(t, err)
		assert.Nil(t, vector)
	})

	t.Run("stored vector round-trips", func(t *testing.T) {
		err := chunkRepo.PutVector(ctx, chunkId, []float32{0.1, -0.5, 0.9})
		require.NoError(t, err)

		vector, err := chunkRepo.GetVector(ctx, chunkId)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, -0.5, 0.9}, vector)

		chunk, err := chunkRepo.GetChunk(ctx, chunkId)
		require.NoError(t, err)
		assert.False(t, chunk.UpdatedAt.IsZero())
	})

	t.Run("put on missing chunk fails", func(t *testing.T) {
		err := chunkRepo.PutVector(ctx, core.ID(8888), []float32{1})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteChunksByDocument(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()
	docA := addTestDocument(t, documentRepo, "keep.txt", "keep text")
	docB := addTestDocument(t, documentRepo, "drop.txt", "drop text")

	kept, err := chunkRepo.AddChunks(ctx, &core.Chunk{DocumentId: docA.Id, Ordinal: 0, Contents: "keep"})
	require.NoError(t, err)
	dropped, err := chunkRepo.AddChunks(ctx,
		&core.Chunk{DocumentId: docB.Id, Ordinal: 0, Contents: "drop zero"},
		&core.Chunk{DocumentId: docB.Id, Ordinal: 1, Contents: "drop one"},
	)
	require.NoError(t, err)

	removed, err := chunkRepo.DeleteChunksByDocument(ctx, docB.Id)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, dropped[0].Id, removed[0])
	assert.Equal(t, dropped[1].Id, removed[1])

	remaining, err := chunkRepo.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept[0].Id, remaining[0].Id)
}
