package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Getters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("format", "compact"))
	require.NoError(t, store.Set("batch_interval_ms", int64(250)))
	require.NoError(t, store.Set("ratio", 2.0))
	require.NoError(t, store.Set("frontmatter", true))

	assert.Equal(t, "compact", store.GetString("format"))
	assert.Equal(t, 250, store.GetInt("batch_interval_ms"))
	assert.Equal(t, 2, store.GetInt("ratio"))
	assert.True(t, store.GetBool("frontmatter"))

	assert.Empty(t, store.GetString("frontmatter"))
	assert.Zero(t, store.GetInt("format"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
}

func TestConfigStore_GetStringMap(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("sessions.claude.local_storage.a", "1"))
	require.NoError(t, store.Set("sessions.claude.local_storage.b", "2"))
	require.NoError(t, store.Set("sessions.claude.cookies", "x=y"))

	assert.Equal(t,
		map[string]string{"a": "1", "b": "2"},
		store.GetStringMap("sessions.claude.local_storage"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("k", n)
			_ = store.GetInt("k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("k")
	assert.True(t, ok)
}
