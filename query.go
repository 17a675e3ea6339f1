package ecs

import (
	"slices"

	"github.com/TheBitDrifter/mask"
)

// Query is a structural filter over archetypes. An archetype matches when it
// holds every With type, none of the Without types, and at least one Any type
// if any were given. The order of With is the order Cursor.Ref indexes by.
type Query struct {
	with    []ComponentID
	without []ComponentID
	any     []ComponentID

	withMask    mask.Mask
	withoutMask mask.Mask
	anyMask     mask.Mask
}

func NewQuery(with ...ComponentID) *Query {
	return (&Query{}).With(with...)
}

func (q *Query) With(ids ...ComponentID) *Query {
	for _, id := range ids {
		q.with = append(q.with, id)
		q.withMask.Mark(uint32(id))
	}
	return q
}

func (q *Query) Without(ids ...ComponentID) *Query {
	for _, id := range ids {
		q.without = append(q.without, id)
		q.withoutMask.Mark(uint32(id))
	}
	return q
}

func (q *Query) Any(ids ...ComponentID) *Query {
	for _, id := range ids {
		q.any = append(q.any, id)
		q.anyMask.Mark(uint32(id))
	}
	return q
}

// Required returns the With ids in Ref order.
func (q *Query) Required() []ComponentID {
	return slices.Clone(q.with)
}

func (q *Query) Evaluate(archetype Archetype) bool {
	archeMask := archetype.Mask()
	if len(q.with) > 0 && !archeMask.ContainsAll(q.withMask) {
		return false
	}
	if len(q.without) > 0 && !archeMask.ContainsNone(q.withoutMask) {
		return false
	}
	if len(q.any) > 0 && !archeMask.ContainsAny(q.anyMask) {
		return false
	}
	return true
}

func (q *Query) match(store *ArchetypeStore) []*archetype {
	matched := make([]*archetype, 0)
	for _, arch := range store.asSlice {
		if q.Evaluate(arch) {
			matched = append(matched, arch)
		}
	}
	return matched
}
