// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package northbound

import "github.com/cockroachdb/errors"

// Error taxonomy of §7. Northbound errors always unwind to the
// originating client; they are the only error class in this daemon that
// does (wire and FSM errors are always local to their component).
var (
	ErrYANGInvalidPath       = errors.New("northbound/yang-invalid-path")
	ErrYANGInternal          = errors.New("northbound/yang-internal")
	ErrTransactionNotFound   = errors.New("northbound/transaction-id-not-found")
	ErrGet                   = errors.New("northbound/get")
)

// ValidationError wraps the first provider error seen during the validate
// fan-out. The engine may log the remainder but only this one is returned.
type ValidationError struct {
	Provider string
	Cause    error
}

func (e *ValidationError) Error() string {
	return errors.Wrapf(e.Cause, "northbound/transaction-validation: provider %q", e.Provider).Error()
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// PreparationError wraps the provider error that caused a prepare-phase
// abort. The running tree is guaranteed unchanged when this is returned.
type PreparationError struct {
	Provider string
	Cause    error
}

func (e *PreparationError) Error() string {
	return errors.Wrapf(e.Cause, "northbound/transaction-preparation: provider %q", e.Provider).Error()
}

func (e *PreparationError) Unwrap() error { return e.Cause }
