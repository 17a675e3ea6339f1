package ecs

import "iter"

var _ Cache[string, any] = &SimpleCache[string, any]{}

// Cache is an insertion-ordered, capacity-bounded registry of items by key.
type Cache[K comparable, T any] interface {
	GetIndex(K) (int, bool)
	GetItem(int) *T
	Register(K, T) (int, error)
	Len() int
	All() iter.Seq2[int, *T]
}

// SimpleCache is the slice-backed Cache used for component descriptors and
// system names. A maxCapacity of zero means unbounded.
type SimpleCache[K comparable, T any] struct {
	items       []T
	itemIndices map[K]int
	maxCapacity int
}

func FactoryNewCache[K comparable, T any](capacity int) *SimpleCache[K, T] {
	return &SimpleCache[K, T]{
		itemIndices: make(map[K]int),
		maxCapacity: capacity,
	}
}

func (c *SimpleCache[K, T]) GetIndex(key K) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[K, T]) GetItem(index int) *T {
	return &c.items[index]
}

// Register stores item under key and returns its index. Registering a known
// key returns the existing index and leaves the stored item untouched.
func (c *SimpleCache[K, T]) Register(key K, item T) (int, error) {
	if idx, ok := c.itemIndices[key]; ok {
		return idx, nil
	}
	if c.maxCapacity > 0 && len(c.items) >= c.maxCapacity {
		return -1, RegistryFullError{Capacity: c.maxCapacity}
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

func (c *SimpleCache[K, T]) Len() int {
	return len(c.items)
}

func (c *SimpleCache[K, T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range c.items {
			if !yield(i, &c.items[i]) {
				return
			}
		}
	}
}

func (c *SimpleCache[K, T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[K]int)
}
