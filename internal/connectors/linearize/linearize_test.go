package linearize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parents(m map[string]string) ParentFunc {
	return func(id string) (string, bool) {
		p, ok := m[id]
		return p, ok && p != ""
	}
}

func TestWalkToRoot(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		path, err := WalkToRoot("c", parents(map[string]string{"c": "b", "b": "a", "a": ""}))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, path)
	})

	t.Run("single node", func(t *testing.T) {
		path, err := WalkToRoot("root", parents(nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"root"}, path)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := WalkToRoot("a", parents(map[string]string{"a": "b", "b": "a"}))
		assert.ErrorIs(t, err, ErrCycle)
	})
}

func TestWalkFromRoot(t *testing.T) {
	next := map[string]string{"r": "x", "x": "y"}
	child := func(id string) (string, bool) {
		c, ok := next[id]
		return c, ok
	}

	path, err := WalkFromRoot("r", child)
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "x", "y"}, path)

	next["y"] = "r"
	_, err = WalkFromRoot("r", child)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestByCreation(t *testing.T) {
	got := ByCreation([]Timed{
		{ID: "late", Created: 30},
		{ID: "unknown"},
		{ID: "early", Created: 10},
		{ID: "tie", Created: 10},
	})
	assert.Equal(t, []string{"unknown", "early", "tie", "late"}, got)
}
