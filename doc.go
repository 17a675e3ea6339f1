/*
Package ecs is an archetype-based Entity-Component-System runtime for games and
simulations.

Entities with the same set of component types share an archetype, which stores
each component type in its own densely packed column. Adding or removing a
component moves the entity between archetypes; queries select archetypes by
component set and cursors walk their rows.

Core Concepts:

  - Entity: a generational handle. A despawned entity's id is reused with a new
    generation, so stale handles are rejected.
  - Component: a plain Go value type registered with a World.
  - Archetype: the storage for every entity with one exact component set.
  - Query: With, Without and Any filters over archetypes.
  - System: a function run by the Scheduler once at startup or once per tick.

Basic Usage:

	w, _ := ecs.NewWorld(ecs.DefaultConfig())

	position := ecs.FactoryNewComponent[Position](w)
	velocity := ecs.FactoryNewComponent[Velocity](w)

	w.Spawn(position.Value(Position{}), velocity.Value(Velocity{X: 1}))

	cursor := w.Cursor(ecs.NewQuery(position.ID(), velocity.ID()))
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

The World is locked while a cursor is iterating. Structural changes made then
fail with WorldLockedError; the Enqueue variants defer them until the last
cursor finishes.

A World is not safe for concurrent use.
*/
package ecs
