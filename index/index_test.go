package index

import (
	"testing"

	"github.com/poiesic/docsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		a := []float32{0.3, 0.5, 0.2}
		b := []float32{0.1, 0.9, 0.4}
		assert.Equal(t, Cosine(a, b), Cosine(b, a))
	})

	t.Run("self similarity of non-zero vector is 1", func(t *testing.T) {
		a := []float32{0.3, 0.5, 0.2}
		assert.InDelta(t, 1.0, Cosine(a, a), 1e-6)
	})

	t.Run("zero vector scores 0", func(t *testing.T) {
		zero := []float32{0, 0, 0}
		assert.Zero(t, Cosine(zero, []float32{1, 2, 3}))
		assert.Zero(t, Cosine([]float32{1, 2, 3}, zero))
	})

	t.Run("dimension mismatch scores 0", func(t *testing.T) {
		assert.Zero(t, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("opposed vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	})

	t.Run("bounded to [-1,1]", func(t *testing.T) {
		a := []float32{1e-3, 1e-3, 1e-3}
		score := Cosine(a, a)
		assert.LessOrEqual(t, score, float32(1))
		assert.GreaterOrEqual(t, score, float32(-1))
	})
}

func TestIndexQuery(t *testing.T) {
	t.Run("identical vectors return all chunks in insertion order", func(t *testing.T) {
		idx, err := New(WithThreshold(0.1))
		require.NoError(t, err)

		v := []float32{0.5, 0.5, 0.5}
		idx.Upsert(3, v)
		idx.Upsert(1, v)
		idx.Upsert(2, v)

		matches := idx.Query(v, 10)
		require.Len(t, matches, 3)
		assert.Equal(t, core.ID(3), matches[0].ChunkId)
		assert.Equal(t, core.ID(1), matches[1].ChunkId)
		assert.Equal(t, core.ID(2), matches[2].ChunkId)
		for _, m := range matches {
			assert.InDelta(t, 1.0, m.Score, 1e-6)
		}
	})

	t.Run("orders by descending score", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)

		idx.Upsert(1, []float32{0, 1})
		idx.Upsert(2, []float32{1, 0})
		idx.Upsert(3, []float32{1, 1})

		matches := idx.Query([]float32{1, 0}, 10)
		require.Len(t, matches, 2, "orthogonal vector must be filtered by threshold")
		assert.Equal(t, core.ID(2), matches[0].ChunkId)
		assert.Equal(t, core.ID(3), matches[1].ChunkId)
	})

	t.Run("threshold filters near-zero matches entirely", func(t *testing.T) {
		idx, err := New(WithThreshold(0.9))
		require.NoError(t, err)

		idx.Upsert(1, []float32{1, 0})
		idx.Upsert(2, []float32{0.6, 0.8})

		matches := idx.Query([]float32{1, 0}, 10)
		require.Len(t, matches, 1)
		assert.Equal(t, core.ID(1), matches[0].ChunkId)
	})

	t.Run("caps at k", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)
		v := []float32{1, 2}
		for id := core.ID(1); id <= 5; id++ {
			idx.Upsert(id, v)
		}
		matches := idx.Query(v, 2)
		assert.Len(t, matches, 2)
	})

	t.Run("zero query vector returns nothing", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)
		idx.Upsert(1, []float32{1, 2})
		assert.Empty(t, idx.Query([]float32{0, 0}, 10))
	})

	t.Run("dimension mismatch is a non-match not an error", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)
		idx.Upsert(1, []float32{1, 2, 3})
		idx.Upsert(2, []float32{1, 2})

		matches := idx.Query([]float32{1, 2}, 10)
		require.Len(t, matches, 1)
		assert.Equal(t, core.ID(2), matches[0].ChunkId)
	})
}

func TestIndexUpsert(t *testing.T) {
	t.Run("last write wins without losing position", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)

		idx.Upsert(1, []float32{1, 0})
		idx.Upsert(2, []float32{1, 0})
		idx.Upsert(1, []float32{0.9, 0.1}) // replacement embedding

		matches := idx.Query([]float32{1, 0}, 10)
		require.Len(t, matches, 2)
		// Equal-scoring ties would still put chunk 1 first; here it scores
		// slightly lower, confirming the replacement vector is in effect.
		assert.Equal(t, core.ID(1), matches[1].ChunkId)
		assert.Equal(t, 2, idx.Len())
	})

	t.Run("empty vector is ignored", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)
		idx.Upsert(1, nil)
		assert.Zero(t, idx.Len())
	})

	t.Run("caller may reuse the slice", func(t *testing.T) {
		idx, err := New()
		require.NoError(t, err)
		v := []float32{1, 0}
		idx.Upsert(1, v)
		v[0] = 0 // mutate after upsert
		matches := idx.Query([]float32{1, 0}, 1)
		require.Len(t, matches, 1)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	})
}

func TestIndexRemove(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)

	v := []float32{1, 1}
	idx.Upsert(1, v)
	idx.Upsert(2, v)
	idx.Upsert(3, v)

	idx.Remove(2, 99) // unknown IDs are ignored
	assert.Equal(t, 2, idx.Len())

	matches := idx.Query(v, 10)
	require.Len(t, matches, 2)
	assert.Equal(t, core.ID(1), matches[0].ChunkId)
	assert.Equal(t, core.ID(3), matches[1].ChunkId)
}

func TestNewValidatesThreshold(t *testing.T) {
	_, err := New(WithThreshold(1.5))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
