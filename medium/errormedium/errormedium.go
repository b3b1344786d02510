// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package errormedium wraps a medium.Medium with configurable error
// injection, for exercising the engine's I/O failure paths in tests.
package errormedium

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/thingpilot/eepromfs/medium"
)

// ErrInjected is an error artificially injected for testing error paths.
var ErrInjected = errors.New("injected error")

// OpKind distinguishes read operations from write operations.
type OpKind int

const (
	// OpKindRead describes device read operations.
	OpKindRead OpKind = iota
	// OpKindWrite describes device write operations.
	OpKindWrite
)

// Op describes a single device access.
type Op struct {
	// Kind is the type of access.
	Kind OpKind
	// Address is the first device address touched by the access.
	Address int
	// Length is the number of bytes accessed.
	Length int
}

// Injector injects errors into device operations.
type Injector interface {
	// MaybeError is invoked before an operation is executed. A non-nil
	// return is handed to the caller and the operation never reaches the
	// device.
	MaybeError(op Op) error
}

// InjectorFunc implements the Injector interface for a function with
// MaybeError's signature.
type InjectorFunc func(Op) error

// MaybeError implements the Injector interface.
func (f InjectorFunc) MaybeError(op Op) error { return f(op) }

// Always returns an injector that always injects an error.
func Always() Injector { return InjectorFunc(func(Op) error { return ErrInjected }) }

// Any returns an injector that injects an error if any of the provided
// injectors inject an error.
func Any(injectors ...Injector) Injector {
	return InjectorFunc(func(op Op) error {
		for _, inj := range injectors {
			if err := inj.MaybeError(op); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reads returns an injector that defers to next on read operations only.
func Reads(next Injector) Injector {
	return InjectorFunc(func(op Op) error {
		if op.Kind == OpKindRead {
			return next.MaybeError(op)
		}
		return nil
	})
}

// Writes returns an injector that defers to next on write operations only.
func Writes(next Injector) Injector {
	return InjectorFunc(func(op Op) error {
		if op.Kind == OpKindWrite {
			return next.MaybeError(op)
		}
		return nil
	})
}

// OnIndex constructs an injector that defers to next on the (n+1)-th
// invocation of its MaybeError function, counting every device operation
// regardless of kind. Combine with Reads or Writes to count one kind only.
func OnIndex(index int32, next Injector) *InjectIndex {
	ii := &InjectIndex{next: next}
	ii.index.Store(index)
	return ii
}

// InjectIndex implements Injector, injecting an error at a specific index.
type InjectIndex struct {
	index atomic.Int32
	next  Injector
}

// Index returns the index at which the error will be injected.
func (ii *InjectIndex) Index() int32 { return ii.index.Load() }

// SetIndex sets the index at which the error will be injected.
func (ii *InjectIndex) SetIndex(v int32) { ii.index.Store(v) }

// MaybeError implements the Injector interface.
func (ii *InjectIndex) MaybeError(op Op) error {
	if ii.index.Add(-1) != -1 {
		return nil
	}
	return ii.next.MaybeError(op)
}

// WithProbability returns an injector that injects an error with probability
// p on every operation of the given kind. p should be within [0.0, 1.0].
func WithProbability(kind OpKind, p float64) Injector {
	mu := new(sync.Mutex)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return InjectorFunc(func(op Op) error {
		mu.Lock()
		defer mu.Unlock()
		if op.Kind == kind && rnd.Float64() < p {
			return errors.WithStack(ErrInjected)
		}
		return nil
	})
}

// Medium implements medium.Medium, injecting errors into its operations.
type Medium struct {
	m   medium.Medium
	inj Injector
}

var _ medium.Medium = (*Medium)(nil)

// Wrap wraps an existing medium.Medium implementation, returning a new
// implementation that shadows operations to the provided one. It uses the
// provided Injector for deciding when to inject errors. If an error is
// injected, the operation never reaches the wrapped device.
func Wrap(m medium.Medium, inj Injector) *Medium {
	return &Medium{m: m, inj: inj}
}

// ReadAt implements medium.Medium.
func (em *Medium) ReadAt(p []byte, addr int) error {
	if err := em.inj.MaybeError(Op{Kind: OpKindRead, Address: addr, Length: len(p)}); err != nil {
		return err
	}
	return em.m.ReadAt(p, addr)
}

// WriteAt implements medium.Medium.
func (em *Medium) WriteAt(p []byte, addr int) error {
	if err := em.inj.MaybeError(Op{Kind: OpKindWrite, Address: addr, Length: len(p)}); err != nil {
		return err
	}
	return em.m.WriteAt(p, addr)
}

// Geometry implements medium.Medium.
func (em *Medium) Geometry() medium.Geometry { return em.m.Geometry() }
