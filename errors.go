package ecs

import (
	"fmt"
	"reflect"
)

// InvalidEntityError is returned by every entity-addressed operation when the
// handle is stale or was never allocated.
type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity: %v", e.Entity)
}

// AllocatorExhaustedError reports that no further entity ids can be issued.
type AllocatorExhaustedError struct {
	Limit uint32
}

func (e AllocatorExhaustedError) Error() string {
	return fmt.Sprintf("entity allocator exhausted (limit %d)", e.Limit)
}

type DuplicateComponentTypeError struct {
	Type reflect.Type
}

func (e DuplicateComponentTypeError) Error() string {
	return fmt.Sprintf("component already present on entity: %v", e.Type)
}

type ComponentNotFoundError struct {
	Type reflect.Type
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: %v", e.Type)
}

type UnregisteredComponentError struct {
	Type reflect.Type
}

func (e UnregisteredComponentError) Error() string {
	return fmt.Sprintf("component type not registered: %v", e.Type)
}

type RegistryFullError struct {
	Capacity int
}

func (e RegistryFullError) Error() string {
	return fmt.Sprintf("registry at maximum capacity (%d)", e.Capacity)
}

// WorldLockedError is returned by structural operations while a cursor holds the world.
type WorldLockedError struct{}

func (e WorldLockedError) Error() string {
	return "world is currently locked"
}

type DuplicateSystemError struct {
	Name string
}

func (e DuplicateSystemError) Error() string {
	return fmt.Sprintf("system %q is already registered", e.Name)
}

type StartupAlreadyRanError struct{}

func (e StartupAlreadyRanError) Error() string {
	return "startup phase already ran"
}

// SystemPanicError carries a panic recovered from a system.
type SystemPanicError struct {
	System string
	Value  any
}

func (e SystemPanicError) Error() string {
	return fmt.Sprintf("system %q panicked: %v", e.System, e.Value)
}

type UnknownComponentIDError struct {
	ID ComponentID
}

func (e UnknownComponentIDError) Error() string {
	return fmt.Sprintf("component id %d not registered", e.ID)
}
