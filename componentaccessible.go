package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// AccessibleComponent is a typed handle to a component type registered in one
// World. It builds values for Spawn/AddComponent and reads T out of cursors
// and entities.
type AccessibleComponent[T any] struct {
	desc ComponentDescriptor
}

// RegisterComponent registers T with w and returns its handle.
func RegisterComponent[T any](w *World) (AccessibleComponent[T], error) {
	desc, err := Register[T](w.components)
	if err != nil {
		return AccessibleComponent[T]{}, eris.Wrapf(err, "failed to register %v", reflect.TypeFor[T]())
	}
	return AccessibleComponent[T]{desc: desc}, nil
}

// FactoryNewComponent is RegisterComponent for setup code; it panics when the
// registry is full.
func FactoryNewComponent[T any](w *World) AccessibleComponent[T] {
	comp, err := RegisterComponent[T](w)
	if err != nil {
		panic(err)
	}
	return comp
}

func (c AccessibleComponent[T]) ID() ComponentID {
	return c.desc.ID
}

func (c AccessibleComponent[T]) Descriptor() ComponentDescriptor {
	return c.desc
}

// Value binds v to this component type.
func (c AccessibleComponent[T]) Value(v T) ComponentValue {
	return ComponentValue{
		id:    c.desc.ID,
		value: reflect.ValueOf(&v).Elem(),
	}
}

// GetFromCursor returns the component of the entity under the cursor, or nil
// when the current archetype does not carry it. A handle registered in a
// different World whose id names another type in this one also yields nil.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	col, ok := c.cursorColumn(cursor)
	if !ok {
		return nil
	}
	return (*T)(col.ptr(cursor.row()))
}

// GetFromCursorSafe reports whether the current archetype carries the component
// before returning it.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	col, ok := c.cursorColumn(cursor)
	if !ok {
		return false, nil
	}
	return true, (*T)(col.ptr(cursor.row()))
}

func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	_, ok := c.cursorColumn(cursor)
	return ok
}

func (c AccessibleComponent[T]) cursorColumn(cursor *Cursor) (*column, bool) {
	if cursor.currentArchetype == nil {
		return nil, false
	}
	col, ok := cursor.currentArchetype.column(c.desc.ID)
	if !ok || col.desc.Type != c.desc.Type {
		return nil, false
	}
	return col, true
}

// GetFromEntity returns e's component. It fails with UnregisteredComponentError
// when w registered the handle's id for a different type.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) (*T, error) {
	if _, err := w.components.describeAs(c.desc.ID, c.desc.Type); err != nil {
		return nil, err
	}
	col, row, err := w.cell(e, c.desc.ID)
	if err != nil {
		return nil, err
	}
	return (*T)(col.ptr(row)), nil
}
