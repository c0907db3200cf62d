// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package northbound

import "context"

// Operation is the callback-key operation kind of §3.
type Operation int

const (
	OpKeyCreate Operation = iota
	OpKeyModify
	OpKeyDelete
	OpKeyLookup
	OpKeyRPC
	OpKeyGetIterate
	OpKeyGetObject
)

// CallbackKey is the (path, operation) pair each provider declares it
// handles at startup. The engine asserts at startup that every writable,
// current (not deprecated/obsolete) schema node has a handler for every
// applicable operation (see Engine.CheckCallbacks).
type CallbackKey struct {
	Path Path
	Op   Operation
}

// Phase identifies where in the two-phase protocol a PrepareRequest sits.
type Phase int

const (
	PhaseValidate Phase = iota
	PhasePrepare
	PhaseApply
	PhaseAbort
)

// PrepareRequest is the batched commit request sent to one provider,
// containing only the changes whose callback key belongs to that
// provider, per §4.1 step 4.
type PrepareRequest struct {
	Phase   Phase
	Old     Tree
	New     Tree
	Changes []Change
}

// GetRequest asks a provider for its contribution to a get(), per §4.1.
type GetRequest struct {
	Kind DataKind
	Path Path
}

// RPCRequest carries an execute() call fanned out to every provider;
// providers that don't recognize the RPC must return an empty tree rather
// than erroring.
type RPCRequest struct {
	Data Tree
}

// Provider is the interface every subsystem that owns part of the
// configuration tree implements. The engine never calls these directly —
// it always goes through per-provider goroutines with a oneshot response
// channel (§4.1 Concurrency), so a slow or wedged provider cannot block
// the others.
type Provider interface {
	// Name identifies the provider in log lines and errors, and keys the
	// per-provider grouping of each commit's changes.
	Name() string
	// Keys returns the callback keys this provider handles; called once
	// at startup during the callback invariant check.
	Keys() []CallbackKey
	// Validate runs schema-independent business validation against a
	// candidate tree; it must not mutate any state.
	Validate(ctx context.Context, candidate Tree) error
	// Prepare handles phase-scoped commit requests (validate is handled
	// separately above; Prepare only ever receives PhasePrepare,
	// PhaseApply, or PhaseAbort).
	Prepare(ctx context.Context, req PrepareRequest) error
	// Get answers a state/configuration/all query for this provider's
	// portion of the tree.
	Get(ctx context.Context, req GetRequest) (Tree, error)
	// Execute answers an RPC; providers that don't recognize data.Path
	// return an empty Tree, not an error.
	Execute(ctx context.Context, req RPCRequest) (Tree, error)
}
