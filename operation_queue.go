package ecs

import (
	"errors"

	"github.com/rotisserie/eris"
)

type operation struct {
	typ    operationType
	entity Entity
	values []componentValue
	remove ComponentID
}

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
)

// opQueue holds structural operations requested while the World is locked.
// Creates apply first, then component operations in request order, then
// destroys. Component operations on an entity pending destruction are dropped.
type opQueue struct {
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[Entity]struct{}
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]struct{}),
	}
}

func (q *opQueue) len() int {
	return len(q.createOps) + len(q.componentOps) + len(q.destroyOps)
}

func (q *opQueue) enqueueCreate(values []componentValue) {
	q.createOps = append(q.createOps, operation{typ: opCreate, values: values})
}

func (q *opQueue) enqueueDestroy(e Entity) {
	if _, exists := q.pendingDestroy[e]; exists {
		return
	}
	q.pendingDestroy[e] = struct{}{}
	q.destroyOps = append(q.destroyOps, operation{typ: opDestroy, entity: e})
}

func (q *opQueue) enqueueComponentOp(op operation) {
	if _, destroyed := q.pendingDestroy[op.entity]; destroyed {
		return
	}
	q.componentOps = append(q.componentOps, op)
}

func (q *opQueue) reset() {
	q.createOps = q.createOps[:0]
	q.componentOps = q.componentOps[:0]
	q.destroyOps = q.destroyOps[:0]
	clear(q.pendingDestroy)
}

func (w *World) processOperationQueue() error {
	if w.opQueue.len() == 0 {
		return nil
	}
	var errs []error
	for _, op := range w.opQueue.createOps {
		if _, err := w.spawn(op.values); err != nil {
			errs = append(errs, eris.Wrap(err, "failed to process queued entity creation"))
		}
	}
	for _, op := range w.opQueue.componentOps {
		if _, destroyed := w.opQueue.pendingDestroy[op.entity]; destroyed {
			continue
		}
		if !w.entities.isAlive(op.entity) {
			errs = append(errs, eris.Wrap(InvalidEntityError{Entity: op.entity}, "queued component operation"))
			continue
		}
		switch op.typ {
		case opAddComponent:
			if err := w.addComponent(op.entity, op.values[0]); err != nil {
				errs = append(errs, eris.Wrap(err, "failed to add queued component"))
			}
		case opRemoveComponent:
			if err := w.removeComponent(op.entity, op.remove); err != nil {
				errs = append(errs, eris.Wrap(err, "failed to remove queued component"))
			}
		}
	}
	for _, op := range w.opQueue.destroyOps {
		if err := w.Despawn(op.entity); err != nil {
			errs = append(errs, eris.Wrap(err, "failed to process queued destruction"))
		}
	}
	w.opQueue.reset()
	return errors.Join(errs...)
}

// EnqueueSpawn spawns immediately when the World is unlocked and otherwise
// defers the spawn until the last lock is released. Values are validated now.
func (w *World) EnqueueSpawn(values ...any) error {
	resolved, err := w.resolveValues(values)
	if err != nil {
		return err
	}
	if w.locks == 0 {
		_, err := w.spawn(resolved)
		return err
	}
	w.opQueue.enqueueCreate(resolved)
	return nil
}

func (w *World) EnqueueDespawn(e Entity) error {
	if w.locks == 0 {
		return w.Despawn(e)
	}
	if !w.entities.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	w.opQueue.enqueueDestroy(e)
	return nil
}

func (w *World) EnqueueAddComponent(e Entity, value any) error {
	if w.locks == 0 {
		return w.AddComponent(e, value)
	}
	if !w.entities.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	v, err := w.resolveValue(value)
	if err != nil {
		return err
	}
	w.opQueue.enqueueComponentOp(operation{typ: opAddComponent, entity: e, values: []componentValue{v}})
	return nil
}

func (w *World) EnqueueRemoveComponent(e Entity, id ComponentID) error {
	if w.locks == 0 {
		return w.RemoveComponent(e, id)
	}
	if !w.entities.isAlive(e) {
		return InvalidEntityError{Entity: e}
	}
	if _, ok := w.components.Describe(id); !ok {
		return UnknownComponentIDError{ID: id}
	}
	w.opQueue.enqueueComponentOp(operation{typ: opRemoveComponent, entity: e, remove: id})
	return nil
}
