package ecs

import (
	"slices"

	"github.com/TheBitDrifter/mask"
)

var _ Archetype = &archetype{}

type archetype struct {
	id       ArchetypeID
	mask     mask.Mask
	types    []ComponentID
	columns  []*column
	slots    map[ComponentID]int
	entities []Entity
}

func newArchetype(id ArchetypeID, m mask.Mask, descs []ComponentDescriptor, capacity int) *archetype {
	sorted := slices.Clone(descs)
	slices.SortFunc(sorted, func(a, b ComponentDescriptor) int {
		return int(a.ID) - int(b.ID)
	})
	arch := &archetype{
		id:       id,
		mask:     m,
		types:    make([]ComponentID, len(sorted)),
		columns:  make([]*column, len(sorted)),
		slots:    make(map[ComponentID]int, len(sorted)),
		entities: make([]Entity, 0, capacity),
	}
	for i, desc := range sorted {
		arch.types[i] = desc.ID
		arch.columns[i] = newColumn(desc, capacity)
		arch.slots[desc.ID] = i
	}
	return arch
}

func (a *archetype) ID() ArchetypeID {
	return a.id
}

func (a *archetype) Mask() mask.Mask {
	return a.mask
}

func (a *archetype) Len() int {
	return len(a.entities)
}

func (a *archetype) Components() []ComponentID {
	return slices.Clone(a.types)
}

func (a *archetype) has(id ComponentID) bool {
	_, ok := a.slots[id]
	return ok
}

func (a *archetype) column(id ComponentID) (*column, bool) {
	slot, ok := a.slots[id]
	if !ok {
		return nil, false
	}
	return a.columns[slot], true
}

// appendRow adds a zeroed row owned by e and returns its index.
func (a *archetype) appendRow(e Entity) int {
	row := len(a.entities)
	a.entities = append(a.entities, e)
	for _, col := range a.columns {
		col.appendZero()
	}
	return row
}

// swapRemove deletes row by moving the last row into it. It reports the entity
// that now occupies row, if one was moved.
func (a *archetype) swapRemove(row int) (Entity, bool) {
	last := len(a.entities) - 1
	for _, col := range a.columns {
		col.swapRemove(row)
	}
	moved := a.entities[last]
	a.entities[row] = moved
	a.entities[last] = Entity{}
	a.entities = a.entities[:last]
	if row == last {
		return Entity{}, false
	}
	return moved, true
}

func (a *archetype) descriptors() []ComponentDescriptor {
	descs := make([]ComponentDescriptor, len(a.columns))
	for i, col := range a.columns {
		descs[i] = col.desc
	}
	return descs
}
