package ecs

import (
	"fmt"
	"math"
)

// Entity is an opaque handle to a logical object in a World. Once the entity is
// despawned its id may be reused, but with a different Generation, so stale
// handles are detectable.
type Entity struct {
	ID         uint32
	Generation uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.ID, e.Generation)
}

// entityAllocator issues and recycles entity ids.
//
// Generations wrap around after math.MaxUint32 frees of the same id. A handle
// kept alive across 2^32 recycles of its id would validate again.
type entityAllocator struct {
	generations []uint32
	live        []bool
	free        []uint32
	limit       uint32
	alive       int
}

func newEntityAllocator(limit uint32, capacity int) *entityAllocator {
	if limit == 0 {
		limit = math.MaxUint32
	}
	if capacity < 0 || uint64(capacity) > uint64(limit) {
		capacity = 0
	}
	return &entityAllocator{
		generations: make([]uint32, 0, capacity),
		live:        make([]bool, 0, capacity),
		limit:       limit,
	}
}

func (a *entityAllocator) allocate() (Entity, error) {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.live[id] = true
		a.alive++
		return Entity{ID: id, Generation: a.generations[id]}, nil
	}
	if uint64(len(a.generations)) >= uint64(a.limit) {
		return Entity{}, AllocatorExhaustedError{Limit: a.limit}
	}
	id := uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	a.live = append(a.live, true)
	a.alive++
	return Entity{ID: id}, nil
}

func (a *entityAllocator) release(e Entity) error {
	if !a.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	a.generations[e.ID]++
	a.live[e.ID] = false
	a.free = append(a.free, e.ID)
	a.alive--
	return nil
}

func (a *entityAllocator) isAlive(e Entity) bool {
	if uint64(e.ID) >= uint64(len(a.generations)) {
		return false
	}
	return a.live[e.ID] && a.generations[e.ID] == e.Generation
}

// current returns the handle the allocator considers valid for id, if any.
func (a *entityAllocator) current(id uint32) (Entity, bool) {
	if uint64(id) >= uint64(len(a.generations)) || !a.live[id] {
		return Entity{}, false
	}
	return Entity{ID: id, Generation: a.generations[id]}, true
}
