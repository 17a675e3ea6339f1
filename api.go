package ecs

import (
	"context"
	"reflect"

	"github.com/TheBitDrifter/mask"
)

// System is a unit of startup-once or per-tick logic. A returned error aborts
// the rest of the phase it runs in.
type System func(ctx context.Context, w *World) error

// Phase selects the list a system is registered into.
type Phase int

const (
	Startup Phase = iota
	Update
)

func (p Phase) String() string {
	switch p {
	case Startup:
		return "startup"
	case Update:
		return "update"
	}
	return "unknown"
}

// WorldOption customises a World at construction.
type WorldOption func(*World)

// FrameFunc runs after every update phase driven by an App, before the next
// tick. It is the seam for an external renderer.
type FrameFunc func(ctx context.Context, w *World, tick uint64) error

type ArchetypeID uint32

// EntityLocation is the archetype and row currently holding an entity's data.
type EntityLocation struct {
	Archetype ArchetypeID
	Row       int
}

// Archetype is a read-only view of a group of entities sharing one component set.
type Archetype interface {
	ID() ArchetypeID
	Mask() mask.Mask
	Len() int
	Components() []ComponentID
}

// ComponentValue is a component value bound to its registered type, produced
// by AccessibleComponent.Value. Spawn and AddComponent accept it alongside
// plain values of registered types.
type ComponentValue struct {
	id    ComponentID
	value reflect.Value
}

func (v ComponentValue) ID() ComponentID {
	return v.id
}
