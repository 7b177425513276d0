package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Empty(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	document := &core.Document{
		Id:         core.IDFromContent("report.md"),
		Filename:   "report.md",
		Contents:   "Quarterly report. Revenue grew. Costs fell.",
		CreatedAt:  now.Add(-time.Hour),
		InsertedAt: now,
	}

	decoded, err := UnmarshalDocument(MarshalDocument(document))
	require.NoError(t, err)
	assert.Equal(t, document.Id, decoded.Id)
	assert.Equal(t, document.Filename, decoded.Filename)
	assert.Equal(t, document.Contents, decoded.Contents)
	assert.True(t, document.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, document.InsertedAt.Equal(decoded.InsertedAt))
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("with vector", func(t *testing.T) {
		chunk := &core.Chunk{
			Id:         7,
			DocumentId: core.IDFromContent("report.md"),
			Ordinal:    2,
			Contents:   "Revenue grew.",
			Vector:     []float32{0.25, -0.5, 0.125},
			InsertedAt: now,
			UpdatedAt:  now,
		}

		decoded, err := UnmarshalChunk(MarshalChunk(chunk))
		require.NoError(t, err)
		assert.Equal(t, chunk.Id, decoded.Id)
		assert.Equal(t, chunk.DocumentId, decoded.DocumentId)
		assert.Equal(t, chunk.Ordinal, decoded.Ordinal)
		assert.Equal(t, chunk.Contents, decoded.Contents)
		assert.Equal(t, chunk.Vector, decoded.Vector)
	})

	t.Run("without vector stays absent", func(t *testing.T) {
		chunk := &core.Chunk{
			Id:         8,
			DocumentId: 1,
			Ordinal:    0,
			Contents:   "Costs fell.",
			InsertedAt: now,
			UpdatedAt:  now,
		}

		decoded, err := UnmarshalChunk(MarshalChunk(chunk))
		require.NoError(t, err)
		// Absent must stay distinguishable from a stored zero vector.
		assert.Empty(t, decoded.Vector)
	})
}
