package ecs

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

// MaxComponentTypes is the number of distinct component types a single World
// can register. It is bounded by the width of the archetype mask in its
// default build; wider masks need the mask package's build tags.
const MaxComponentTypes = 64

// ComponentID is the per-World identity of a registered component type. It is
// also the bit the type occupies in archetype masks.
type ComponentID uint32

// ComponentDescriptor is the type-erased description of a component type used
// to create and interpret raw column storage.
type ComponentDescriptor struct {
	ID    ComponentID
	Type  reflect.Type
	Size  uintptr
	Align uintptr

	pointerFree bool
}

func (d ComponentDescriptor) Name() string {
	return d.Type.String()
}

// ComponentRegistry records one descriptor per component type. Each World owns
// its own registry; ids are assigned in registration order starting at zero and
// are not shared between worlds.
type ComponentRegistry struct {
	byType *SimpleCache[reflect.Type, ComponentDescriptor]
}

func newComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byType: FactoryNewCache[reflect.Type, ComponentDescriptor](MaxComponentTypes),
	}
}

// Register records T and returns its descriptor. Registering the same type
// again returns the original descriptor.
func Register[T any](r *ComponentRegistry) (ComponentDescriptor, error) {
	return r.register(reflect.TypeFor[T]())
}

func (r *ComponentRegistry) register(typ reflect.Type) (ComponentDescriptor, error) {
	if desc, ok := r.DescribeType(typ); ok {
		return desc, nil
	}
	desc := ComponentDescriptor{
		ID:          ComponentID(r.byType.Len()),
		Type:        typ,
		Size:        typ.Size(),
		Align:       uintptr(typ.Align()),
		pointerFree: !hasPointers(typ),
	}
	if _, err := r.byType.Register(typ, desc); err != nil {
		return ComponentDescriptor{}, err
	}
	return desc, nil
}

// Describe looks a descriptor up by id, for storage code without compile-time
// type knowledge.
func (r *ComponentRegistry) Describe(id ComponentID) (ComponentDescriptor, bool) {
	if int(id) >= r.byType.Len() {
		return ComponentDescriptor{}, false
	}
	return *r.byType.GetItem(int(id)), true
}

// describeAs returns the descriptor for id only if it was registered for typ.
func (r *ComponentRegistry) describeAs(id ComponentID, typ reflect.Type) (ComponentDescriptor, error) {
	desc, ok := r.Describe(id)
	if !ok || desc.Type != typ {
		return ComponentDescriptor{}, UnregisteredComponentError{Type: typ}
	}
	return desc, nil
}

func (r *ComponentRegistry) DescribeType(typ reflect.Type) (ComponentDescriptor, bool) {
	idx, ok := r.byType.GetIndex(typ)
	if !ok {
		return ComponentDescriptor{}, false
	}
	return *r.byType.GetItem(idx), true
}

func (r *ComponentRegistry) Len() int {
	return r.byType.Len()
}

// Descriptors yields every registered descriptor in registration order.
func (r *ComponentRegistry) Descriptors() iter.Seq[ComponentDescriptor] {
	return func(yield func(ComponentDescriptor) bool) {
		for _, desc := range r.byType.All() {
			if !yield(*desc) {
				return
			}
		}
	}
}

func (r *ComponentRegistry) mustDescribe(id ComponentID) ComponentDescriptor {
	desc, ok := r.Describe(id)
	if !ok {
		panic(eris.Errorf("component id %d not registered", id))
	}
	return desc
}

// hasPointers reports whether values of typ contain pointers the garbage
// collector must see. Pointer-free columns are copied as raw bytes.
func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
