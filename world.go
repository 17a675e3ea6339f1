package ecs

import (
	"errors"
	"iter"
	"os"
	"reflect"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/TheBitDrifter/mask"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// World owns the entity allocator, the component registry and the archetype
// store. It is not safe for concurrent use; all operations are expected on the
// owning goroutine.
type World struct {
	config     Config
	logger     zerolog.Logger
	metrics    *Metrics
	statsd     ddstatsd.ClientInterface
	entities   *entityAllocator
	components *ComponentRegistry
	archetypes *ArchetypeStore

	locks       int
	opQueue     opQueue
	deferredErr error
}

// WithLogger replaces the logger built from the Config.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithStatsdClient replaces the statsd client built from Config.StatsdAddress.
func WithStatsdClient(client ddstatsd.ClientInterface) WorldOption {
	return func(w *World) {
		w.statsd = client
	}
}

func NewWorld(cfg Config, opts ...WorldOption) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	w := &World{
		config:  cfg,
		logger:  logger,
		opQueue: newOpQueue(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics, err = newMetrics(cfg, w.statsd, w.logger); err != nil {
		return nil, err
	}
	w.entities = newEntityAllocator(cfg.MaxEntities, cfg.InitialCapacity)
	w.components = newComponentRegistry()
	w.archetypes = newArchetypeStore(w.components, cfg.InitialCapacity, w.logger)
	return w, nil
}

func (w *World) Config() Config {
	return w.config
}

func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

func (w *World) Metrics() *Metrics {
	return w.metrics
}

func (w *World) Components() *ComponentRegistry {
	return w.components
}

func (w *World) Archetypes() *ArchetypeStore {
	return w.archetypes
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.alive
}

func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// Spawn creates an entity carrying values. Each value is either a
// ComponentValue or a plain value of a registered component type.
func (w *World) Spawn(values ...any) (Entity, error) {
	if w.locks > 0 {
		return Entity{}, WorldLockedError{}
	}
	resolved, err := w.resolveValues(values)
	if err != nil {
		return Entity{}, err
	}
	return w.spawn(resolved)
}

func (w *World) spawn(values []componentValue) (Entity, error) {
	e, err := w.entities.allocate()
	if err != nil {
		return Entity{}, eris.Wrap(err, "failed to allocate entity")
	}
	w.archetypes.insertNewEntity(e, values)
	return e, nil
}

func (w *World) Despawn(e Entity) error {
	if w.locks > 0 {
		return WorldLockedError{}
	}
	if !w.entities.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	if err := w.archetypes.removeEntity(e); err != nil {
		return err
	}
	return w.entities.release(e)
}

// AddComponent moves e to the archetype that also holds value's type. Adding a
// type e already carries fails with DuplicateComponentTypeError; use Set to
// overwrite.
func (w *World) AddComponent(e Entity, value any) error {
	if w.locks > 0 {
		return WorldLockedError{}
	}
	if !w.entities.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	v, err := w.resolveValue(value)
	if err != nil {
		return err
	}
	return w.addComponent(e, v)
}

func (w *World) addComponent(e Entity, v componentValue) error {
	if w.archetypes.location(e).arch.has(v.desc.ID) {
		return DuplicateComponentTypeError{Type: v.desc.Type}
	}
	if _, err := w.archetypes.moveEntity(e, &v, nil); err != nil {
		return eris.Wrapf(err, "failed to add %v", v.desc.Type)
	}
	return nil
}

// RemoveComponent moves e to the archetype without id. The removed value is discarded.
func (w *World) RemoveComponent(e Entity, id ComponentID) error {
	if w.locks > 0 {
		return WorldLockedError{}
	}
	if !w.entities.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	return w.removeComponent(e, id)
}

func (w *World) removeComponent(e Entity, id ComponentID) error {
	desc, ok := w.components.Describe(id)
	if !ok {
		return UnknownComponentIDError{ID: id}
	}
	if !w.archetypes.location(e).arch.has(id) {
		return ComponentNotFoundError{Type: desc.Type}
	}
	if _, err := w.archetypes.moveEntity(e, nil, &id); err != nil {
		return eris.Wrapf(err, "failed to remove %v", desc.Type)
	}
	return nil
}

// Location reports where e's data currently lives.
func (w *World) Location(e Entity) (EntityLocation, error) {
	if !w.entities.isAlive(e) {
		return EntityLocation{}, InvalidEntityError{Entity: e}
	}
	loc := w.archetypes.location(e)
	return EntityLocation{Archetype: loc.arch.id, Row: loc.row}, nil
}

// ComponentBytes returns a read-only view of the raw bytes of e's component id.
// The view is invalidated by the next structural change.
func (w *World) ComponentBytes(e Entity, id ComponentID) ([]byte, error) {
	col, row, err := w.cell(e, id)
	if err != nil {
		return nil, err
	}
	return col.bytes(row), nil
}

// ComponentTypes returns the ids of every component e carries, in id order.
func (w *World) ComponentTypes(e Entity) ([]ComponentID, error) {
	if !w.entities.isAlive(e) {
		return nil, InvalidEntityError{Entity: e}
	}
	return w.archetypes.location(e).arch.Components(), nil
}

func (w *World) cell(e Entity, id ComponentID) (*column, int, error) {
	if !w.entities.isAlive(e) {
		return nil, 0, InvalidEntityError{Entity: e}
	}
	loc := w.archetypes.location(e)
	col, ok := loc.arch.column(id)
	if !ok {
		desc, known := w.components.Describe(id)
		if !known {
			return nil, 0, UnknownComponentIDError{ID: id}
		}
		return nil, 0, ComponentNotFoundError{Type: desc.Type}
	}
	return col, loc.row, nil
}

// PruneEmptyArchetypes drops archetypes that hold no entities.
func (w *World) PruneEmptyArchetypes() (int, error) {
	if w.locks > 0 {
		return 0, WorldLockedError{}
	}
	n := w.archetypes.PruneEmpty()
	w.logger.Debug().Int("pruned", n).Msg("pruned empty archetypes")
	return n, nil
}

// Query yields every entity whose archetype holds all of required and none of
// excluded, together with one *T reference per required type, in order. The
// refs slice is reused between steps. The World is locked while the sequence
// is being consumed.
func (w *World) Query(required []ComponentID, excluded []ComponentID) iter.Seq2[Entity, []any] {
	q := NewQuery(required...).Without(excluded...)
	return func(yield func(Entity, []any) bool) {
		cursor := w.Cursor(q)
		refs := make([]any, len(required))
		for cursor.Next() {
			for i := range refs {
				refs[i] = cursor.Ref(i)
			}
			if !yield(cursor.Entity(), refs) {
				cursor.Reset()
				return
			}
		}
	}
}

func (w *World) Cursor(q *Query) *Cursor {
	return newCursor(q, w)
}

func (w *World) Locked() bool {
	return w.locks > 0
}

// Lock blocks structural changes until a matching Unlock. Locks nest.
func (w *World) Lock() {
	w.locks++
}

// Unlock releases one lock. Releasing the last lock applies queued operations.
func (w *World) Unlock() {
	if w.locks == 0 {
		return
	}
	w.locks--
	if w.locks > 0 {
		return
	}
	if err := w.processOperationQueue(); err != nil {
		w.logger.Error().Err(err).Msg("deferred operations failed")
		w.deferredErr = errors.Join(w.deferredErr, err)
	}
}

// unlockTo releases locks until only n remain.
func (w *World) unlockTo(n int) {
	for w.locks > n {
		w.Unlock()
	}
}

// TakeDeferredError returns and clears the failures of queued operations
// applied since the last call.
func (w *World) TakeDeferredError() error {
	err := w.deferredErr
	w.deferredErr = nil
	return err
}

func (w *World) resolveValues(values []any) ([]componentValue, error) {
	resolved := make([]componentValue, 0, len(values))
	var seen mask.Mask
	for _, value := range values {
		v, err := w.resolveValue(value)
		if err != nil {
			return nil, err
		}
		var bit mask.Mask
		bit.Mark(uint32(v.desc.ID))
		if seen.ContainsAll(bit) {
			return nil, DuplicateComponentTypeError{Type: v.desc.Type}
		}
		seen.Mark(uint32(v.desc.ID))
		resolved = append(resolved, v)
	}
	return resolved, nil
}

func (w *World) resolveValue(value any) (componentValue, error) {
	if cv, ok := value.(ComponentValue); ok {
		if !cv.value.IsValid() {
			return componentValue{}, eris.New("empty component value")
		}
		desc, err := w.components.describeAs(cv.id, cv.value.Type())
		if err != nil {
			return componentValue{}, err
		}
		return componentValue{desc: desc, value: cv.value}, nil
	}
	typ := reflect.TypeOf(value)
	if typ == nil {
		return componentValue{}, eris.New("nil component value")
	}
	desc, ok := w.components.DescribeType(typ)
	if !ok {
		return componentValue{}, UnregisteredComponentError{Type: typ}
	}
	return componentValue{desc: desc, value: reflect.ValueOf(value)}, nil
}

// Add registers T if needed and adds value to e.
func Add[T any](w *World, e Entity, value T) error {
	comp, err := RegisterComponent[T](w)
	if err != nil {
		return err
	}
	return w.AddComponent(e, comp.Value(value))
}

// Remove removes T from e.
func Remove[T any](w *World, e Entity) error {
	if !w.IsAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	desc, ok := w.components.DescribeType(reflect.TypeFor[T]())
	if !ok {
		return ComponentNotFoundError{Type: reflect.TypeFor[T]()}
	}
	return w.RemoveComponent(e, desc.ID)
}

// Get returns a pointer to e's T. The pointer is invalidated by the next
// structural change to the World.
func Get[T any](w *World, e Entity) (*T, error) {
	if !w.IsAlive(e) {
		return nil, InvalidEntityError{Entity: e}
	}
	desc, ok := w.components.DescribeType(reflect.TypeFor[T]())
	if !ok {
		return nil, ComponentNotFoundError{Type: reflect.TypeFor[T]()}
	}
	col, row, err := w.cell(e, desc.ID)
	if err != nil {
		return nil, err
	}
	return (*T)(col.ptr(row)), nil
}

// Set overwrites e's T in place. It is not a structural change and is allowed
// while the World is locked.
func Set[T any](w *World, e Entity, value T) error {
	ptr, err := Get[T](w, e)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

func Has[T any](w *World, e Entity) bool {
	_, err := Get[T](w, e)
	return err == nil
}
