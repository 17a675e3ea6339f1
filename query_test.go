package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryFiltering(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	spawn := func(n int, values ...any) {
		for range n {
			_, err := w.Spawn(values...)
			require.NoError(t, err)
		}
	}
	spawn(5, c.position.Value(Position{}), c.velocity.Value(Velocity{}))
	spawn(10, c.position.Value(Position{}))
	spawn(15, c.velocity.Value(Velocity{}))
	spawn(20, c.health.Value(Health{}))
	spawn(2)

	tests := []struct {
		name            string
		query           *Query
		expectedMatches int
	}{
		{"with matches supersets", NewQuery(c.position.ID()), 15},
		{"with all", NewQuery(c.position.ID(), c.velocity.ID()), 5},
		{"without excludes", NewQuery(c.position.ID()).Without(c.velocity.ID()), 10},
		{"any matches either", NewQuery().Any(c.position.ID(), c.velocity.ID()), 30},
		{"only without", NewQuery().Without(c.velocity.ID()), 32},
		{"empty matches everything", NewQuery(), 52},
		{"with and any", NewQuery(c.velocity.ID()).Any(c.position.ID(), c.health.ID()), 5},
		{"nothing registered on it", NewQuery(c.player.ID()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := w.Cursor(tt.query)
			assert.Equal(t, tt.expectedMatches, cursor.TotalMatched())

			count := 0
			for cursor.Next() {
				count++
			}
			assert.Equal(t, tt.expectedMatches, count)
			assert.False(t, w.Locked())
		})
	}
}

func TestQueryPlayerPosition(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	_, err := w.Spawn(c.position.Value(Position{X: 1}))
	require.NoError(t, err)
	player, err := w.Spawn(c.position.Value(Position{X: 2}), c.player.Value(Player{}))
	require.NoError(t, err)
	_, err = w.Spawn(c.position.Value(Position{X: 3}), c.velocity.Value(Velocity{}))
	require.NoError(t, err)

	var found []Entity
	for e, refs := range w.Query([]ComponentID{c.position.ID(), c.player.ID()}, nil) {
		found = append(found, e)
		require.Len(t, refs, 2)
		pos, ok := refs[0].(*Position)
		require.True(t, ok)
		assert.Equal(t, 2.0, pos.X)
		_, ok = refs[1].(*Player)
		assert.True(t, ok)
	}
	assert.Equal(t, []Entity{player}, found)

	var others int
	for range w.Query([]ComponentID{c.position.ID()}, []ComponentID{c.player.ID()}) {
		others++
	}
	assert.Equal(t, 2, others)
}

func TestCursorMutatesInPlace(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	var entities []Entity
	for i := range 10 {
		e, err := w.Spawn(c.position.Value(Position{X: float64(i)}), c.velocity.Value(Velocity{X: 1, Y: 2}))
		require.NoError(t, err)
		entities = append(entities, e)
	}

	cursor := w.Cursor(NewQuery(c.position.ID(), c.velocity.ID()))
	for cursor.Next() {
		pos := c.position.GetFromCursor(cursor)
		vel := cursor.Ref(1).(*Velocity)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	for i, e := range entities {
		pos, err := Get[Position](w, e)
		require.NoError(t, err)
		assert.Equal(t, Position{X: float64(i) + 1, Y: 2}, *pos)
	}
}

func TestCursorIsRestartable(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)
	for range 3 {
		_, err := w.Spawn(c.position.Value(Position{}))
		require.NoError(t, err)
	}

	cursor := w.Cursor(NewQuery(c.position.ID()))
	for pass := range 3 {
		count := 0
		for cursor.Next() {
			count++
		}
		assert.Equal(t, 3, count, "pass %d", pass)
	}

	// Abandoning a pass and resetting starts over from the first entity.
	require.True(t, cursor.Next())
	first := cursor.Entity()
	require.True(t, w.Locked())
	cursor.Reset()
	assert.False(t, w.Locked())
	require.True(t, cursor.Next())
	assert.Equal(t, first, cursor.Entity())
	cursor.Reset()
}

func TestCursorReflectsLaterStructuralChanges(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	cursor := w.Cursor(NewQuery(c.position.ID()))
	assert.Equal(t, 0, cursor.TotalMatched())

	_, err := w.Spawn(c.position.Value(Position{}), c.health.Value(Health{}))
	require.NoError(t, err)

	count := 0
	for cursor.Next() {
		count++
	}
	assert.Equal(t, 1, count, "archetypes created after the cursor are visible to the next pass")
}

func TestCursorEntitiesSeq(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)
	for i := range 6 {
		values := []any{c.position.Value(Position{X: float64(i)})}
		if i%2 == 0 {
			values = append(values, c.health.Value(Health{Current: i}))
		}
		_, err := w.Spawn(values...)
		require.NoError(t, err)
	}

	cursor := w.Cursor(NewQuery(c.position.ID()))
	withHealth := 0
	for i, e := range cursor.Entities() {
		assert.True(t, w.IsAlive(e))
		if ok, hp := c.health.GetFromCursorSafe(cursor); ok {
			assert.Equal(t, 0, hp.Current%2)
			withHealth++
		}
		if i == 4 {
			break
		}
	}
	assert.False(t, w.Locked(), "breaking out of the sequence releases the world")
	assert.LessOrEqual(t, withHealth, 3)
}

func TestEvaluateAgainstArchetypes(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	id, err := w.Archetypes().FindOrCreate(c.position.ID(), c.velocity.ID())
	require.NoError(t, err)
	arch, ok := w.Archetypes().Archetype(id)
	require.True(t, ok)

	assert.True(t, NewQuery(c.velocity.ID(), c.position.ID()).Evaluate(arch))
	assert.False(t, NewQuery(c.position.ID()).Without(c.velocity.ID()).Evaluate(arch))
	assert.False(t, NewQuery().Any(c.health.ID(), c.player.ID()).Evaluate(arch))
	assert.True(t, NewQuery().Any(c.health.ID(), c.velocity.ID()).Evaluate(arch))
	assert.Equal(t, []ComponentID{c.velocity.ID(), c.position.ID()}, NewQuery(c.velocity.ID(), c.position.ID()).Required())
}
