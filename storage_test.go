package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertColumnsAligned checks that every column of every archetype holds one
// value per entity and that every entity's location points back at itself.
func assertColumnsAligned(t *testing.T, w *World) {
	t.Helper()
	for _, arch := range w.archetypes.asSlice {
		for _, col := range arch.columns {
			assert.Equal(t, arch.Len(), col.len, "archetype %d column %s", arch.id, col.desc.Name())
		}
		for row, e := range arch.entities {
			loc := w.archetypes.location(e)
			assert.Same(t, arch, loc.arch, "entity %v", e)
			assert.Equal(t, row, loc.row, "entity %v", e)
		}
	}
}

func TestFindOrCreateIgnoresOrder(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)
	store := w.Archetypes()

	tests := []struct {
		name string
		ids  []ComponentID
	}{
		{"ordered", []ComponentID{c.position.ID(), c.velocity.ID(), c.health.ID()}},
		{"reversed", []ComponentID{c.health.ID(), c.velocity.ID(), c.position.ID()}},
		{"shuffled", []ComponentID{c.velocity.ID(), c.health.ID(), c.position.ID()}},
		{"repeated", []ComponentID{c.velocity.ID(), c.health.ID(), c.position.ID(), c.health.ID()}},
	}

	var want ArchetypeID
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := store.FindOrCreate(tt.ids...)
			require.NoError(t, err)
			if i == 0 {
				want = id
			}
			assert.Equal(t, want, id)
		})
	}
	assert.Equal(t, 1, store.Len())

	arch, ok := store.Archetype(want)
	require.True(t, ok)
	assert.Len(t, arch.Components(), 3)

	_, err := store.FindOrCreate(ComponentID(MaxComponentTypes - 1))
	var unknown UnknownComponentIDError
	require.ErrorAs(t, err, &unknown)
}

func TestSpawnOrderSharesArchetype(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	a, err := w.Spawn(c.position.Value(Position{}), c.velocity.Value(Velocity{}))
	require.NoError(t, err)
	b, err := w.Spawn(c.velocity.Value(Velocity{}), c.position.Value(Position{}))
	require.NoError(t, err)

	locA, err := w.Location(a)
	require.NoError(t, err)
	locB, err := w.Location(b)
	require.NoError(t, err)
	assert.Equal(t, locA.Archetype, locB.Archetype)
	assert.Equal(t, 0, locA.Row)
	assert.Equal(t, 1, locB.Row)
}

func TestSwapRemoveUpdatesLocations(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	e1, err := w.Spawn(c.position.Value(Position{X: 1}), c.velocity.Value(Velocity{X: 10}))
	require.NoError(t, err)
	e2, err := w.Spawn(c.position.Value(Position{X: 2}), c.velocity.Value(Velocity{X: 20}))
	require.NoError(t, err)
	e3, err := w.Spawn(c.position.Value(Position{X: 3}), c.velocity.Value(Velocity{X: 30}))
	require.NoError(t, err)

	require.NoError(t, w.RemoveComponent(e1, c.velocity.ID()))
	assertColumnsAligned(t, w)

	loc3, err := w.Location(e3)
	require.NoError(t, err)
	assert.Equal(t, 0, loc3.Row, "the last row fills the vacated slot")

	for _, tc := range []struct {
		e   Entity
		pos Position
	}{
		{e1, Position{X: 1}},
		{e2, Position{X: 2}},
		{e3, Position{X: 3}},
	} {
		pos, err := Get[Position](w, tc.e)
		require.NoError(t, err)
		assert.Equal(t, tc.pos, *pos, "entity %v", tc.e)
	}
	vel3, err := Get[Velocity](w, e3)
	require.NoError(t, err)
	assert.Equal(t, Velocity{X: 30}, *vel3)
	assert.False(t, Has[Velocity](w, e1))

	require.NoError(t, w.Despawn(e3))
	assertColumnsAligned(t, w)
	vel2, err := Get[Velocity](w, e2)
	require.NoError(t, err)
	assert.Equal(t, Velocity{X: 20}, *vel2)
}

func TestStructuralChurnKeepsColumnsAligned(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	var entities []Entity
	for i := range 200 {
		e, err := w.Spawn(c.position.Value(Position{X: float64(i)}))
		require.NoError(t, err)
		entities = append(entities, e)
	}
	for i, e := range entities {
		switch i % 4 {
		case 0:
			require.NoError(t, w.AddComponent(e, c.velocity.Value(Velocity{X: float64(i)})))
		case 1:
			require.NoError(t, w.AddComponent(e, c.health.Value(Health{Current: i})))
			require.NoError(t, w.AddComponent(e, c.velocity.Value(Velocity{X: float64(i)})))
		case 2:
			require.NoError(t, w.Despawn(e))
		}
	}
	assertColumnsAligned(t, w)

	for i, e := range entities {
		if i%4 == 2 {
			assert.False(t, w.IsAlive(e))
			continue
		}
		pos, err := Get[Position](w, e)
		require.NoError(t, err)
		assert.Equal(t, float64(i), pos.X)
		if i%4 == 1 {
			hp, err := Get[Health](w, e)
			require.NoError(t, err)
			assert.Equal(t, i, hp.Current)
		}
	}
	assert.Equal(t, 150, w.Len())
}

func TestColumnGrowth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapacity = 0
	w := newTestWorldWithConfig(t, cfg)
	c := registerTestComponents(w)

	var entities []Entity
	for i := range 100 {
		e, err := w.Spawn(c.position.Value(Position{X: float64(i)}), c.name.Value(Name{Value: "n"}))
		require.NoError(t, err)
		entities = append(entities, e)
	}
	assertColumnsAligned(t, w)
	for i, e := range entities {
		pos, err := Get[Position](w, e)
		require.NoError(t, err)
		assert.Equal(t, float64(i), pos.X)
	}
}

func TestDespawnMiddleRow(t *testing.T) {
	w := newTestWorld(t)
	c := registerTestComponents(w)

	spawned := map[Entity]Position{}
	var order []Entity
	for i := 1; i <= 3; i++ {
		pos := Position{X: float64(i), Y: float64(-i)}
		e, err := w.Spawn(c.position.Value(pos), c.health.Value(Health{Current: i}))
		require.NoError(t, err)
		spawned[e] = pos
		order = append(order, e)
	}

	require.NoError(t, w.Despawn(order[1]))
	assertColumnsAligned(t, w)

	for _, e := range []Entity{order[0], order[2]} {
		loc, err := w.Location(e)
		require.NoError(t, err)
		arch := w.archetypes.location(e).arch
		assert.Equal(t, e, arch.entities[loc.Row])

		pos, err := Get[Position](w, e)
		require.NoError(t, err)
		assert.Equal(t, spawned[e], *pos)
	}
	loc3, err := w.Location(order[2])
	require.NoError(t, err)
	assert.Equal(t, 1, loc3.Row)
}
