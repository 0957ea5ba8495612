package s14e

import "fmt"

// writeRefs assigns reference ids to composite values in the order they are
// first written. Ids start at 1.
type writeRefs struct {
	ids  map[any]uint64
	next uint64
}

func newWriteRefs() *writeRefs {
	return &writeRefs{ids: make(map[any]uint64), next: 1}
}

// assign returns the id of a composite and whether it was seen before. A
// new composite gets the next id.
func (r *writeRefs) assign(v Value) (uint64, bool) {
	if id, ok := r.ids[v.data]; ok {
		return id, true
	}
	id := r.next
	r.ids[v.data] = id
	r.next++
	return id, false
}

// readRefs maps reference ids back to composites. A slot is allocated
// before a container is read, so children can refer to it.
type readRefs struct {
	values []Value
}

// allocate reserves the next id.
func (r *readRefs) allocate() uint64 {
	r.values = append(r.values, Value{})
	return uint64(len(r.values))
}

// register binds an allocated id to its container.
func (r *readRefs) register(id uint64, v Value) {
	r.values[id-1] = v
}

// add allocates an id and binds it to v at once.
func (r *readRefs) add(v Value) {
	r.register(r.allocate(), v)
}

// resolve returns the container for id. An id that was never allocated, or
// whose container is still being built, is an error.
func (r *readRefs) resolve(id uint64) (Value, error) {
	if id == 0 || id > uint64(len(r.values)) {
		return Value{}, fmt.Errorf("%w: id %d of %d", ErrInvalidReference, id, len(r.values))
	}
	v := r.values[id-1]
	if !v.IsComposite() {
		return Value{}, fmt.Errorf("%w: id %d is not yet defined", ErrInvalidReference, id)
	}
	return v, nil
}
