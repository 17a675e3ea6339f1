package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type location struct {
	arch *archetype
	row  int
}

type componentValue struct {
	desc  ComponentDescriptor
	value reflect.Value
}

// ArchetypeStore owns every archetype of a World and the entity location table.
// Archetypes are created lazily and are only removed by PruneEmpty.
type ArchetypeStore struct {
	registry  *ComponentRegistry
	nextID    ArchetypeID
	asSlice   []*archetype
	byMask    map[mask.Mask]*archetype
	locations []location
	capacity  int
	logger    zerolog.Logger
}

func newArchetypeStore(registry *ComponentRegistry, capacity int, logger zerolog.Logger) *ArchetypeStore {
	return &ArchetypeStore{
		registry: registry,
		nextID:   1,
		byMask:   make(map[mask.Mask]*archetype),
		capacity: capacity,
		logger:   logger,
	}
}

// FindOrCreate returns the archetype for the given component set. Order and
// repetition of ids do not matter.
func (s *ArchetypeStore) FindOrCreate(ids ...ComponentID) (ArchetypeID, error) {
	var m mask.Mask
	descs := make([]ComponentDescriptor, 0, len(ids))
	for _, id := range ids {
		desc, ok := s.registry.Describe(id)
		if !ok {
			return 0, UnknownComponentIDError{ID: id}
		}
		var bit mask.Mask
		bit.Mark(uint32(id))
		if m.ContainsAll(bit) {
			continue
		}
		m.Mark(uint32(id))
		descs = append(descs, desc)
	}
	return s.findOrCreate(m, descs).id, nil
}

func (s *ArchetypeStore) findOrCreate(m mask.Mask, descs []ComponentDescriptor) *archetype {
	if arch, ok := s.byMask[m]; ok {
		return arch
	}
	arch := newArchetype(s.nextID, m, descs, s.capacity)
	s.nextID++
	s.asSlice = append(s.asSlice, arch)
	s.byMask[m] = arch

	if e := s.logger.Debug(); e.Enabled() {
		names := zerolog.Arr()
		for _, desc := range arch.descriptors() {
			names = names.Str(desc.Name())
		}
		e.Uint32("archetype_id", uint32(arch.id)).Array("components", names).Msg("archetype created")
	}
	return arch
}

func (s *ArchetypeStore) setLocation(e Entity, loc location) {
	if need := int(e.ID) + 1; need > len(s.locations) {
		s.locations = append(s.locations, make([]location, need-len(s.locations))...)
	}
	s.locations[e.ID] = loc
}

func (s *ArchetypeStore) location(e Entity) location {
	return s.locations[e.ID]
}

// insertNewEntity places e into the archetype matching values and writes one row.
func (s *ArchetypeStore) insertNewEntity(e Entity, values []componentValue) EntityLocation {
	var m mask.Mask
	descs := make([]ComponentDescriptor, len(values))
	for i, v := range values {
		m.Mark(uint32(v.desc.ID))
		descs[i] = v.desc
	}
	arch := s.findOrCreate(m, descs)
	row := arch.appendRow(e)
	for _, v := range values {
		col, _ := arch.column(v.desc.ID)
		col.set(row, v.value)
	}
	s.setLocation(e, location{arch: arch, row: row})
	return EntityLocation{Archetype: arch.id, Row: row}
}

// moveEntity relocates e to the archetype for its current set plus add minus
// remove. Shared components are copied, a removed component's value is
// discarded, and both e and the entity displaced by the swap-remove in the
// source archetype get their locations updated.
func (s *ArchetypeStore) moveEntity(e Entity, add *componentValue, remove *ComponentID) (EntityLocation, error) {
	loc := s.location(e)
	src := loc.arch
	if src == nil {
		return EntityLocation{}, eris.Wrap(InvalidEntityError{Entity: e}, "entity has no location")
	}

	targetMask := src.mask
	descs := make([]ComponentDescriptor, 0, len(src.types)+1)
	for _, desc := range src.descriptors() {
		if remove != nil && desc.ID == *remove {
			continue
		}
		descs = append(descs, desc)
	}
	if remove != nil {
		targetMask.Unmark(uint32(*remove))
	}
	if add != nil {
		targetMask.Mark(uint32(add.desc.ID))
		descs = append(descs, add.desc)
	}

	dst := s.findOrCreate(targetMask, descs)
	if dst == src {
		return EntityLocation{Archetype: src.id, Row: loc.row}, nil
	}

	newRow := dst.appendRow(e)
	for i, id := range dst.types {
		if srcCol, ok := src.column(id); ok {
			dst.columns[i].copyFrom(newRow, srcCol, loc.row)
		}
	}
	if add != nil {
		col, _ := dst.column(add.desc.ID)
		col.set(newRow, add.value)
	}

	s.vacate(src, loc.row)
	s.setLocation(e, location{arch: dst, row: newRow})
	return EntityLocation{Archetype: dst.id, Row: newRow}, nil
}

// removeEntity drops e's row and all of its component values.
func (s *ArchetypeStore) removeEntity(e Entity) error {
	loc := s.location(e)
	if loc.arch == nil {
		return eris.Wrap(InvalidEntityError{Entity: e}, "entity has no location")
	}
	s.vacate(loc.arch, loc.row)
	s.locations[e.ID] = location{}
	return nil
}

func (s *ArchetypeStore) vacate(arch *archetype, row int) {
	if moved, ok := arch.swapRemove(row); ok {
		s.locations[moved.ID].row = row
	}
}

// PruneEmpty drops archetypes holding no entities and returns how many were
// removed. ArchetypeIDs are never reused.
func (s *ArchetypeStore) PruneEmpty() int {
	kept := s.asSlice[:0]
	pruned := 0
	for _, arch := range s.asSlice {
		if arch.Len() > 0 {
			kept = append(kept, arch)
			continue
		}
		delete(s.byMask, arch.mask)
		pruned++
	}
	clear(s.asSlice[len(kept):])
	s.asSlice = kept
	return pruned
}

func (s *ArchetypeStore) Len() int {
	return len(s.asSlice)
}

// Archetype returns the live archetype with the given id.
func (s *ArchetypeStore) Archetype(id ArchetypeID) (Archetype, bool) {
	for _, arch := range s.asSlice {
		if arch.id == id {
			return arch, true
		}
	}
	return nil, false
}

// Archetypes returns every archetype in creation order.
func (s *ArchetypeStore) Archetypes() []Archetype {
	out := make([]Archetype, len(s.asSlice))
	for i, arch := range s.asSlice {
		out[i] = arch
	}
	return out
}
