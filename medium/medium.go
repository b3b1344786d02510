// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package medium defines the storage port consumed by the eepromfs engine: a
// byte-addressable persistent device such as an I2C or SPI EEPROM.
//
// The engine never talks to hardware directly. It issues absolute-address
// reads and writes against the Medium interface and leaves bus protocol,
// page-program splitting and retries to the driver behind it. Two reference
// implementations are provided: Mem, a RAM-backed device for tests and
// benchmarks, and File, a raw device image stored in a regular file.
package medium

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Geometry describes the physical shape of a medium. Region layout and bulk
// write pacing are derived from it; it never changes for the lifetime of a
// device.
type Geometry struct {
	// PageSize is the size in bytes of one physical page, the unit at which
	// the device applies program cycles. Must be a power of two.
	PageSize int

	// Pages is the total number of pages on the device.
	Pages int

	// WriteSettle is the delay the device needs after a page program cycle
	// before it will reliably accept the next write. Zero for media without a
	// program cycle (RAM, image files). Callers performing bulk page writes
	// (for example a full format) must sleep this long between consecutive
	// pages.
	WriteSettle time.Duration
}

// Size returns the capacity of the medium in bytes.
func (g Geometry) Size() int { return g.PageSize * g.Pages }

// ErrOutOfRange is returned when a read or write touches addresses outside
// the medium.
var ErrOutOfRange = errors.New("medium: address out of range")

// Medium is a byte-addressable persistent storage device.
//
// Both operations either complete fully or return an error; there is no
// partial-success reporting. Ranges may cross page boundaries: drivers split
// such accesses internally. Implementations retain only what was explicitly
// written; the engine never assumes erased state.
//
// Implementations must be safe for use by a single caller at a time. Drivers
// that share a bus with other traffic are expected to serialize internally.
type Medium interface {
	// ReadAt fills p with the bytes stored at [addr, addr+len(p)). It fails
	// with ErrOutOfRange if the range does not lie within [0, Size()).
	ReadAt(p []byte, addr int) error

	// WriteAt persists p at [addr, addr+len(p)). It fails with ErrOutOfRange
	// if the range does not lie within [0, Size()).
	WriteAt(p []byte, addr int) error

	// Geometry reports the device shape.
	Geometry() Geometry
}

// checkRange validates [addr, addr+n) against a geometry. Shared by the
// in-tree implementations; custom drivers are free to produce richer errors.
func checkRange(g Geometry, addr, n int) error {
	if addr < 0 || n < 0 || addr+n > g.Size() {
		return errors.Wrapf(ErrOutOfRange, "access [%d,%d) on %d-byte device", addr, addr+n, g.Size())
	}
	return nil
}
