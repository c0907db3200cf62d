// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package northbound implements the two-phase-commit transaction engine of
// §4.1: the authoritative running configuration tree, provider fan-out,
// confirmed-commit rollback, and the durable transaction journal.
//
// The schema itself and the YANG-like data tree implementation are
// explicitly out of scope (§1); this package treats them as a black-box
// "tree + diff + path-lookup" dependency behind the Tree interface. The
// pathTree type below is a minimal in-memory implementation sufficient to
// exercise and test the engine; a real deployment would swap it for a
// generated schema-bound tree without the engine noticing.
package northbound

import (
	"sort"
	"strings"
)

// Path is a hierarchical node path, e.g. {"interfaces", "eth0", "ospf", "cost"}.
type Path []string

// String renders p as a "/"-joined path for logging and diagnostics.
func (p Path) String() string { return "/" + strings.Join(p, "/") }

// HasPrefix reports whether p starts with prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Op is a change kind, per §3's diff record.
type Op int

const (
	OpCreate Op = iota
	OpModify
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one (path, operation, old, new) diff record.
type Change struct {
	Path Path
	Op   Op
	Old  any
	New  any
}

// DataKind selects what a get() request returns, per §4.1.
type DataKind int

const (
	DataState DataKind = iota
	DataConfiguration
	DataAll
)

// Tree is the black-box schema-bound data tree this engine drives. Its
// semantics (exact validation rules, what "state" nodes are) live in the
// schema dependency the real spec treats as external; this package only
// needs the five operations below.
type Tree interface {
	// Duplicate returns a deep copy that may be mutated independently.
	Duplicate() Tree
	// Merge overlays delta atop the receiver and returns the result; the
	// receiver is not mutated.
	Merge(delta Tree) Tree
	// Lookup returns the subtree rooted at path, or ok=false if absent.
	Lookup(path Path) (Tree, bool)
	// Diff returns the ordered list of changes needed to turn the receiver
	// into other.
	Diff(other Tree) []Change
	// Validate checks schema constraints. withState also validates
	// config:false (operational) nodes; withState=false validates only
	// the configuration subset, the mode used before a candidate is
	// admitted as the new running tree.
	Validate(withState bool) error
}

// pathTree is a minimal in-memory Tree: a flat map of path-string to leaf
// value, with children discovered by prefix. It has no schema, so
// Validate always succeeds — real deployments provide a schema-bound Tree
// that actually enforces §3's "validation against the schema in two
// modes".
type pathTree struct {
	values map[string]any
}

// NewTree returns an empty pathTree, the default Tree implementation used
// where no schema-bound tree has been supplied (tests, and the initial
// empty running configuration at daemon startup).
func NewTree() Tree {
	return &pathTree{values: make(map[string]any)}
}

func pathKey(p Path) string { return p.String() }

// Set installs value at path; it is a test/bootstrap helper, not part of
// the Tree interface, since real schema-bound trees have their own typed
// setters.
func (t *pathTree) Set(path Path, value any) {
	t.values[pathKey(path)] = value
}

func (t *pathTree) Duplicate() Tree {
	cp := make(map[string]any, len(t.values))
	for k, v := range t.values {
		cp[k] = v
	}
	return &pathTree{values: cp}
}

func (t *pathTree) Merge(delta Tree) Tree {
	other, ok := delta.(*pathTree)
	out := t.Duplicate().(*pathTree)
	if !ok {
		return out
	}
	for k, v := range other.values {
		out.values[k] = v
	}
	return out
}

func (t *pathTree) Lookup(path Path) (Tree, bool) {
	prefix := pathKey(path)
	sub := make(map[string]any)
	found := false
	for k, v := range t.values {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			sub[k] = v
			found = true
		}
	}
	if !found {
		return nil, false
	}
	return &pathTree{values: sub}, true
}

func (t *pathTree) Diff(other Tree) []Change {
	o, ok := other.(*pathTree)
	if !ok {
		return nil
	}
	var changes []Change
	keys := make(map[string]struct{})
	for k := range t.values {
		keys[k] = struct{}{}
	}
	for k := range o.values {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		oldV, hadOld := t.values[k]
		newV, hasNew := o.values[k]
		path := Path(strings.Split(strings.TrimPrefix(k, "/"), "/"))
		switch {
		case !hadOld && hasNew:
			changes = append(changes, Change{Path: path, Op: OpCreate, New: newV})
		case hadOld && !hasNew:
			changes = append(changes, Change{Path: path, Op: OpDelete, Old: oldV})
		case hadOld && hasNew && oldV != newV:
			changes = append(changes, Change{Path: path, Op: OpModify, Old: oldV, New: newV})
		}
	}
	return changes
}

func (t *pathTree) Validate(withState bool) error { return nil }
