// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"github.com/cockroachdb/redact"
	"github.com/thingpilot/eepromfs/internal/invariants"
	"github.com/thingpilot/eepromfs/medium"
)

// maxMediumSize caps the media the store can manage: every on-medium
// address, including the one-past-the-end write cursors, must fit in 16
// bits.
const maxMediumSize = 1 << 16

// Layout carves a medium into three fixed regions:
//
//	+--------------+--------------------------+------------------------+
//	| page 0       | pages 1 .. FileTablePages| remaining pages        |
//	| global stats | file table               | data region            |
//	+--------------+--------------------------+------------------------+
//
// Fields are absolute byte addresses and byte lengths. The layout is a pure
// function of the medium geometry and Options.FileTablePages; it is computed
// once at Open/Format and never persisted.
type Layout struct {
	GlobalStatsAddr int
	GlobalStatsLen  int
	TableAddr       int
	TableLen        int
	DataAddr        int
	DataLen         int
}

// computeLayout derives the region layout from a geometry that has already
// passed Options.Validate.
func computeLayout(g medium.Geometry, tablePages int) Layout {
	l := Layout{
		GlobalStatsAddr: 0,
		GlobalStatsLen:  g.PageSize,
		TableAddr:       g.PageSize,
		TableLen:        tablePages * g.PageSize,
	}
	l.DataAddr = l.TableAddr + l.TableLen
	l.DataLen = g.Size() - l.DataAddr
	if l.DataAddr+l.DataLen == maxMediumSize {
		// A file filled to the very last byte would park its write cursor,
		// and the global bump pointer, at 2^16, which the 16-bit on-medium
		// fields cannot hold. That byte stays unallocated.
		l.DataLen--
	}
	return l
}

// MaxSlots returns the number of descriptors the file table can hold.
func (l Layout) MaxSlots() int {
	return l.TableLen / descriptorSize
}

// slotAddr returns the absolute address of file table slot i.
func (l Layout) slotAddr(i int) int {
	invariants.CheckBounds(i, l.MaxSlots())
	return l.TableAddr + i*descriptorSize
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	return redact.StringWithoutMarkers(l)
}

// SafeFormat implements redact.SafeFormatter.
func (l Layout) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("stats [0x%04x, 0x%04x) table [0x%04x, 0x%04x) data [0x%04x, 0x%04x) slots %d",
		redact.Safe(l.GlobalStatsAddr), redact.Safe(l.GlobalStatsAddr+l.GlobalStatsLen),
		redact.Safe(l.TableAddr), redact.Safe(l.TableAddr+l.TableLen),
		redact.Safe(l.DataAddr), redact.Safe(l.DataAddr+l.DataLen),
		redact.Safe(l.MaxSlots()))
}
