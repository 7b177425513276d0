package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("notes.txt\x00The quick brown fox")
		id2 := IDFromContent("notes.txt\x00The quick brown fox")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		id1 := IDFromContent("alpha")
		id2 := IDFromContent("beta")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		id := IDFromContent("")
		assert.NotZero(t, id)
	})
}

func TestSearchModeValues(t *testing.T) {
	// Zero must stay unused so an unset mode is detectable.
	assert.NotEqual(t, SearchMode(0), ModeSemantic)
	assert.NotEqual(t, SearchMode(0), ModeLexical)
	assert.NotEqual(t, ModeSemantic, ModeLexical)
}
