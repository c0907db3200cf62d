// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package arena implements the generational-index object store described
// in §9: interfaces, adjacencies/neighbors, and LSAs are stored in
// per-kind arenas and referenced by (generational-index, external-object-id)
// pairs across task boundaries, so a stale reference to a replaced or
// deleted object is detected and ignored rather than dereferenced.
package arena

// Ref is an opaque handle into an Arena. The zero Ref never refers to a
// live object (generation 0 is never issued).
type Ref struct {
	index      uint32
	generation uint32
}

// Valid reports whether r could possibly refer to a live object (it does
// not consult any Arena — a stale-but-well-formed Ref is still Valid; use
// Arena.Get to find out if it currently resolves).
func (r Ref) Valid() bool { return r.generation != 0 }

type slot[T any] struct {
	generation uint32
	occupied   bool
	value      T
}

// Arena is a generational slot map. The zero value is ready to use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
}

// Insert stores value and returns a Ref that remains valid until the slot
// is Removed, at which point the same index may be reused with a bumped
// generation — any Ref captured before the removal will then fail Get.
func (a *Arena[T]) Insert(value T) Ref {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.occupied = true
		s.value = value
		return Ref{index: idx, generation: s.generation}
	}
	a.slots = append(a.slots, slot[T]{generation: 1, occupied: true, value: value})
	return Ref{index: uint32(len(a.slots) - 1), generation: 1}
}

// Get resolves r to its current value. ok is false if r is stale (the
// slot was removed and possibly reused) or out of range.
func (a *Arena[T]) Get(r Ref) (value T, ok bool) {
	if int(r.index) >= len(a.slots) {
		return value, false
	}
	s := &a.slots[r.index]
	if !s.occupied || s.generation != r.generation {
		return value, false
	}
	return s.value, true
}

// GetPtr resolves r to a pointer into the arena's backing storage, valid
// until the next Insert/Remove reshapes the slice. Callers that need to
// mutate in place (FSM transitions) use this instead of Get+re-Insert.
func (a *Arena[T]) GetPtr(r Ref) (*T, bool) {
	if int(r.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[r.index]
	if !s.occupied || s.generation != r.generation {
		return nil, false
	}
	return &s.value, true
}

// Remove deletes the object at r, if r is still current. It bumps the
// slot's generation so any outstanding stale Ref will subsequently fail
// Get/GetPtr, and returns the slot to the free list for reuse.
func (a *Arena[T]) Remove(r Ref) bool {
	if int(r.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[r.index]
	if !s.occupied || s.generation != r.generation {
		return false
	}
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, r.index)
	return true
}

// Len returns the number of currently-occupied slots.
func (a *Arena[T]) Len() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].occupied {
			n++
		}
	}
	return n
}

// Range calls f for every currently-occupied slot, in index order. f may
// not insert or remove during the call.
func (a *Arena[T]) Range(f func(Ref, *T) bool) {
	for i := range a.slots {
		if !a.slots[i].occupied {
			continue
		}
		ref := Ref{index: uint32(i), generation: a.slots[i].generation}
		if !f(ref, &a.slots[i].value) {
			return
		}
	}
}
