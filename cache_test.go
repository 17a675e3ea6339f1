package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBasicOperations(t *testing.T) {
	cache := FactoryNewCache[string, int](10)

	keys := []string{"item1", "item2", "item3"}
	for i, key := range keys {
		index, err := cache.Register(key, i*10)
		require.NoError(t, err)
		assert.Equal(t, i, index)
	}
	assert.Equal(t, len(keys), cache.Len())

	for i, key := range keys {
		index, found := cache.GetIndex(key)
		require.True(t, found, key)
		assert.Equal(t, i*10, *cache.GetItem(index))
	}

	_, found := cache.GetIndex("nonexistent")
	assert.False(t, found)
}

func TestCacheRegisterIsIdempotent(t *testing.T) {
	cache := FactoryNewCache[string, int](10)

	first, err := cache.Register("key", 1)
	require.NoError(t, err)
	again, err := cache.Register("key", 2)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, 1, *cache.GetItem(first), "re-registering must not overwrite the stored item")
	assert.Equal(t, 1, cache.Len())
}

func TestCacheCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		inserts  int
		wantFull bool
	}{
		{"under capacity", 5, 4, false},
		{"at capacity", 5, 5, false},
		{"over capacity", 5, 6, true},
		{"unbounded", 0, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := FactoryNewCache[int, int](tt.capacity)
			var err error
			for i := 0; i < tt.inserts && err == nil; i++ {
				_, err = cache.Register(i, i)
			}
			if !tt.wantFull {
				require.NoError(t, err)
				assert.Equal(t, tt.inserts, cache.Len())
				return
			}
			var full RegistryFullError
			require.ErrorAs(t, err, &full)
			assert.Equal(t, tt.capacity, full.Capacity)
			assert.Equal(t, tt.capacity, cache.Len())
		})
	}
}

func TestCacheAllAndClear(t *testing.T) {
	cache := FactoryNewCache[string, string](0)
	for _, key := range []string{"a", "b", "c"} {
		_, err := cache.Register(key, key+key)
		require.NoError(t, err)
	}

	var got []string
	for _, item := range cache.All() {
		got = append(got, *item)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"aa", "bb"}, got)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, found := cache.GetIndex("a")
	assert.False(t, found)
}
