// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"github.com/cockroachdb/errors"
	"github.com/thingpilot/eepromfs/medium"
)

// newStore validates the options against the medium's geometry and builds a
// store around the computed layout. It does not touch the medium.
func newStore(m medium.Medium, opts *Options) (*Store, error) {
	opts = opts.Clone()
	opts.EnsureDefaults()
	g := m.Geometry()
	if err := opts.Validate(g); err != nil {
		return nil, err
	}
	return &Store{
		m:      m,
		opts:   opts,
		layout: computeLayout(g, opts.FileTablePages),
	}, nil
}

// Format initialises the filesystem on m: it zeroes the file table one page
// at a time, pausing for the medium's write-settle delay after each page
// program, then persists fresh allocator counters carrying the formatted
// sentinel. Any content the medium previously held becomes unreachable.
//
// Format aborts on the first medium error without retrying. A first format
// that fails partway leaves no valid sentinel, so a subsequent Open reports
// ErrNotFormatted. Reformatting is not atomic: an abort can leave the
// previous filesystem partially erased under a still-valid sentinel.
func Format(m medium.Medium, opts *Options) error {
	s, err := newStore(m, opts)
	if err != nil {
		return err
	}
	return s.format()
}

func (s *Store) format() error {
	g := s.m.Geometry()
	blank := make([]byte, g.PageSize)
	for page := 0; page < s.opts.FileTablePages; page++ {
		if err := s.mediumWrite(blank, s.layout.TableAddr+page*g.PageSize); err != nil {
			return err
		}
		s.settle(g)
	}
	err := s.writeStats(globalStats{
		next:      uint16(s.layout.DataAddr),
		remaining: uint16(s.layout.DataLen),
		magic:     formattedMagic,
	})
	if err != nil {
		return err
	}
	s.opts.Logger.Infof("eepromfs: formatted %d-byte medium: %s", g.Size(), s.layout)
	return nil
}

// settle waits out the delay the device needs after a page program cycle
// before the next write is reliable.
func (s *Store) settle(g medium.Geometry) {
	if g.WriteSettle > 0 {
		s.opts.sleep(g.WriteSettle)
		s.metrics.settleWaits.Add(1)
	}
}

// IsFormatted reports whether m carries a formatted filesystem.
func IsFormatted(m medium.Medium) (bool, error) {
	var buf [globalStatsSize]byte
	if err := m.ReadAt(buf[:], 0); err != nil {
		return false, err
	}
	return decodeGlobalStats(buf[:]).formatted(), nil
}

// Open returns a store over the filesystem on m. It fails with
// ErrNotFormatted if the medium does not carry the formatted sentinel;
// Format it first. The options must describe the same file table size the
// medium was formatted with.
//
// The returned store assumes it is the only writer to m. Callers sharing a
// store across goroutines must serialize every operation externally.
func Open(m medium.Medium, opts *Options) (*Store, error) {
	s, err := newStore(m, opts)
	if err != nil {
		return nil, err
	}
	gs, err := s.readStats()
	if err != nil {
		return nil, err
	}
	if !gs.formatted() {
		return nil, errors.Wrapf(ErrNotFormatted, "magic %#08x", gs.magic)
	}
	count, err := s.FileCount()
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Infof("eepromfs: opened %d-byte medium: %d files, %d bytes unreserved",
		m.Geometry().Size(), count, gs.remaining)
	return s, nil
}
