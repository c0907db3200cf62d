// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package providermock provides a configurable northbound.Provider whose
// hooks cover the two-phase-commit outcomes (success, prepare-failure/
// abort, validate-failure). No test in this module imports it; the
// engine's own tests use a fake provider defined in engine_test.go.
package providermock

import (
	"context"

	"github.com/polyd/polyd/northbound"
)

// Provider is a configurable northbound.Provider. Each exported func field
// defaults to a success no-op when nil; tests set only the hooks they care
// about.
type Provider struct {
	name string
	keys []northbound.CallbackKey

	ValidateFunc func(ctx context.Context, candidate northbound.Tree) error
	PrepareFunc  func(ctx context.Context, req northbound.PrepareRequest) error
	GetFunc      func(ctx context.Context, req northbound.GetRequest) (northbound.Tree, error)
	ExecuteFunc  func(ctx context.Context, req northbound.RPCRequest) (northbound.Tree, error)

	// Calls records every Prepare phase seen, in order, for assertions
	// about abort-after-failure ordering.
	Calls []northbound.Phase
}

// New returns a Provider named name that declares keys and succeeds on
// every callback by default.
func New(name string, keys []northbound.CallbackKey) *Provider {
	return &Provider{name: name, keys: keys}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Keys() []northbound.CallbackKey { return p.keys }

func (p *Provider) Validate(ctx context.Context, candidate northbound.Tree) error {
	if p.ValidateFunc != nil {
		return p.ValidateFunc(ctx, candidate)
	}
	return nil
}

func (p *Provider) Prepare(ctx context.Context, req northbound.PrepareRequest) error {
	p.Calls = append(p.Calls, req.Phase)
	if p.PrepareFunc != nil {
		return p.PrepareFunc(ctx, req)
	}
	return nil
}

func (p *Provider) Get(ctx context.Context, req northbound.GetRequest) (northbound.Tree, error) {
	if p.GetFunc != nil {
		return p.GetFunc(ctx, req)
	}
	return northbound.NewTree(), nil
}

func (p *Provider) Execute(ctx context.Context, req northbound.RPCRequest) (northbound.Tree, error) {
	if p.ExecuteFunc != nil {
		return p.ExecuteFunc(ctx, req)
	}
	return northbound.NewTree(), nil
}
