package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositories(t *testing.T) (storage.DocumentRepository, storage.ChunkRepository) {
	t.Helper()
	documentRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	})
	return documentRepo, chunkRepo
}

func newTestDocument(filename, contents string) *core.Document {
	return &core.Document{
		Filename:  filename,
		Contents:  contents,
		CreatedAt: time.Now().UTC(),
	}
}

func TestAddDocument(t *testing.T) {
	documentRepo, _ := setupRepositories(t)
	ctx := context.Background()

	t.Run("assigns content-based ID and timestamp", func(t *testing.T) {
		added, err := documentRepo.AddDocument(ctx, newTestDocument("a.txt", "hello world"))
		require.NoError(t, err)
		assert.NotZero(t, added.Id)
		assert.False(t, added.InsertedAt.IsZero())
		assert.Equal(t, core.IDFromContent("a.txt\x00hello world"), added.Id)
	})

	t.Run("identical document overwrites rather than duplicates", func(t *testing.T) {
		first, err := documentRepo.AddDocument(ctx, newTestDocument("b.txt", "same text"))
		require.NoError(t, err)
		second, err := documentRepo.AddDocument(ctx, newTestDocument("b.txt", "same text"))
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
	})

	t.Run("rejects invalid document", func(t *testing.T) {
		_, err := documentRepo.AddDocument(ctx, &core.Document{Filename: "", Contents: "x"})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})
}

func TestGetDocument(t *testing.T) {
	documentRepo, _ := setupRepositories(t)
	ctx := context.Background()

	added, err := documentRepo.AddDocument(ctx, newTestDocument("get.txt", "retrievable text"))
	require.NoError(t, err)

	t.Run("existing", func(t *testing.T) {
		got, err := documentRepo.GetDocument(ctx, added.Id)
		require.NoError(t, err)
		assert.Equal(t, added.Filename, got.Filename)
		assert.Equal(t, added.Contents, got.Contents)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := documentRepo.GetDocument(ctx, core.ID(12345))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGetDocuments_SkipsMissing(t *testing.T) {
	documentRepo, _ := setupRepositories(t)
	ctx := context.Background()

	added, err := documentRepo.AddDocument(ctx, newTestDocument("one.txt", "only one"))
	require.NoError(t, err)

	documents, err := documentRepo.GetDocuments(ctx, added.Id, core.ID(999))
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, added.Id, documents[0].Id)
}

func TestListDocuments(t *testing.T) {
	documentRepo, _ := setupRepositories(t)
	ctx := context.Background()

	_, err := documentRepo.AddDocument(ctx, newTestDocument("x.txt", "first"))
	require.NoError(t, err)
	_, err = documentRepo.AddDocument(ctx, newTestDocument("y.txt", "second"))
	require.NoError(t, err)

	documents, err := documentRepo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, documents, 2)
}

func TestDeleteDocument_CascadesToChunks(t *testing.T) {
	documentRepo, chunkRepo := setupRepositories(t)
	ctx := context.Background()

	doc, err := documentRepo.AddDocument(ctx, newTestDocument("del.txt", "first part. second part."))
	require.NoError(t, err)

	chunks := []*core.Chunk{
		{DocumentId: doc.Id, Ordinal: 0, Contents: "first part."},
		{DocumentId: doc.Id, Ordinal: 1, Contents: "second part."},
	}
	added, err := chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	removed, err := documentRepo.DeleteDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, added[0].Id, removed[0])
	assert.Equal(t, added[1].Id, removed[1])

	_, err = documentRepo.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	remaining, err := chunkRepo.ListChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteDocument_Missing(t *testing.T) {
	documentRepo, _ := setupRepositories(t)
	_, err := documentRepo.DeleteDocument(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
