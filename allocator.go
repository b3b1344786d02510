// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/thingpilot/eepromfs/internal/invariants"
)

// formattedMagic marks a medium that has been formatted. A blank or foreign
// medium reads back something else and every open fails with ErrNotFormatted.
const formattedMagic uint32 = 0x695acc5c

// globalStats is the persisted allocator state. On-medium encoding (little
// endian, at address 0):
//
//	+--------------+----------------+------------+
//	| next (2B)    | remaining (2B) | magic (4B) |
//	+--------------+----------------+------------+
//
// next is the address of the first unreserved data byte. It only moves
// forward: the bump allocator never reclaims a file's range, so remaining is
// always dataLen - (next - dataStart).
type globalStats struct {
	next      uint16
	remaining uint16
	magic     uint32
}

const globalStatsSize = 8

func (gs globalStats) formatted() bool {
	return gs.magic == formattedMagic
}

func (gs globalStats) encode(p []byte) {
	_ = p[globalStatsSize-1]
	binary.LittleEndian.PutUint16(p[0:2], gs.next)
	binary.LittleEndian.PutUint16(p[2:4], gs.remaining)
	binary.LittleEndian.PutUint32(p[4:8], gs.magic)
}

func decodeGlobalStats(p []byte) globalStats {
	_ = p[globalStatsSize-1]
	return globalStats{
		next:      binary.LittleEndian.Uint16(p[0:2]),
		remaining: binary.LittleEndian.Uint16(p[2:4]),
		magic:     binary.LittleEndian.Uint32(p[4:8]),
	}
}

func (s *Store) readStats() (globalStats, error) {
	var buf [globalStatsSize]byte
	if err := s.mediumRead(buf[:], s.layout.GlobalStatsAddr); err != nil {
		return globalStats{}, err
	}
	gs := decodeGlobalStats(buf[:])
	if invariants.Enabled && gs.formatted() {
		if used := int(gs.next) - s.layout.DataAddr; int(gs.remaining) != s.layout.DataLen-used {
			panic(errors.AssertionFailedf("eepromfs: allocator counters out of sync: next %#x remaining %d",
				gs.next, gs.remaining))
		}
	}
	return gs, nil
}

func (s *Store) writeStats(gs globalStats) error {
	var buf [globalStatsSize]byte
	gs.encode(buf[:])
	return s.mediumWrite(buf[:], s.layout.GlobalStatsAddr)
}

// reserve carves requested bytes off the front of the unreserved data region
// and persists the advanced counters. It returns the first reserved address
// along with the counters as they were before the bump, so a caller whose
// follow-up writes fail can restore them.
func (s *Store) reserve(requested int) (start int, prev globalStats, err error) {
	prev, err = s.readStats()
	if err != nil {
		return 0, globalStats{}, err
	}
	if requested > int(prev.remaining) {
		return 0, globalStats{}, errors.Wrapf(ErrInsufficientSpace,
			"%d bytes requested, %d remaining", requested, prev.remaining)
	}
	next := globalStats{
		next:      prev.next + uint16(requested),
		remaining: prev.remaining - uint16(requested),
		magic:     prev.magic,
	}
	if err := s.writeStats(next); err != nil {
		return 0, globalStats{}, err
	}
	return int(prev.next), prev, nil
}

// GlobalStats is a read-only snapshot of the allocator counters.
type GlobalStats struct {
	// NextAddress is the address of the next unreserved data byte.
	NextAddress int
	// SpaceRemaining is the number of data-region bytes not yet reserved.
	SpaceRemaining int
	// Formatted reports whether the medium carried the formatted sentinel.
	Formatted bool
}

// String implements fmt.Stringer.
func (gs GlobalStats) String() string {
	return redact.StringWithoutMarkers(gs)
}

// SafeFormat implements redact.SafeFormatter.
func (gs GlobalStats) SafeFormat(w redact.SafePrinter, _ rune) {
	if !gs.Formatted {
		w.SafeString("not formatted")
		return
	}
	w.Printf("next 0x%04x, %d bytes remaining", redact.Safe(gs.NextAddress), redact.Safe(gs.SpaceRemaining))
}
