package ecs

import "iter"

// Cursor walks every row of every archetype matching a Query. The archetype
// set is scanned when iteration starts, and the World stays locked until the
// cursor is exhausted or Reset. A cursor abandoned mid-iteration must be Reset
// or the World stays locked.
type Cursor struct {
	query *Query
	world *World

	currentArchetype *archetype
	columns          []*column
	storageIndex     int
	entityIndex      int
	remaining        int

	initialized bool
	matched     []*archetype
}

func newCursor(query *Query, world *World) *Cursor {
	return &Cursor{
		query: query,
		world: world,
	}
}

// Next advances to the next matching entity. It returns false once every
// match was visited, at which point the cursor has been Reset and a further
// Next starts a fresh scan.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	for c.storageIndex < len(c.matched) {
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.storageIndex++
		c.entityIndex = 0
		c.load()
	}
	c.Reset()
	return false
}

// Entities ranges over the matches, yielding a running index and the entity.
// Components are read through AccessibleComponent.GetFromCursor or Ref.
func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		n := 0
		for c.Next() {
			if !yield(n, c.Entity()) {
				c.Reset()
				return
			}
			n++
		}
	}
}

func (c *Cursor) initialize() {
	c.matched = c.query.match(c.world.archetypes)
	c.storageIndex = 0
	c.entityIndex = 0
	c.load()
	c.initialized = true
	c.world.Lock()
}

func (c *Cursor) load() {
	if c.storageIndex >= len(c.matched) {
		c.currentArchetype = nil
		c.columns = c.columns[:0]
		c.remaining = 0
		return
	}
	c.currentArchetype = c.matched[c.storageIndex]
	c.remaining = c.currentArchetype.Len()
	c.columns = c.columns[:0]
	for _, id := range c.query.with {
		col, _ := c.currentArchetype.column(id)
		c.columns = append(c.columns, col)
	}
}

// Reset abandons the iteration and releases the World lock it holds.
func (c *Cursor) Reset() {
	wasInitialized := c.initialized
	c.storageIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matched = nil
	c.currentArchetype = nil
	c.columns = c.columns[:0]
	c.initialized = false
	if wasInitialized {
		c.world.Unlock()
	}
}

func (c *Cursor) row() int {
	return c.entityIndex - 1
}

// Entity returns the entity under the cursor.
func (c *Cursor) Entity() Entity {
	return c.currentArchetype.entities[c.row()]
}

// Ref returns a *T reference to the i-th With component of the entity under
// the cursor. It panics if i is not below len(With).
func (c *Cursor) Ref(i int) any {
	return c.columns[i].ref(c.row())
}

func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIndex
}

// TotalMatched counts the entities the query currently matches without
// starting an iteration.
func (c *Cursor) TotalMatched() int {
	total := 0
	for _, arch := range c.query.match(c.world.archetypes) {
		total += arch.Len()
	}
	return total
}
