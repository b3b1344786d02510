// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveBumpsForward(t *testing.T) {
	s, _ := newTestStore(t, testGeometry(), &Options{})

	// Files are carved contiguously in creation order and the counters
	// track the running sum of reserved bytes.
	next := s.layout.DataAddr
	remaining := s.layout.DataLen
	for i, records := range []int{3, 1, 7} {
		id := FileID(i + 1)
		require.NoError(t, s.Create(id, 8, records))
		fi, err := s.Lookup(id)
		require.NoError(t, err)
		require.Equal(t, next, fi.Start)
		require.Equal(t, next+8*records-1, fi.End)

		gs, err := s.Stats()
		require.NoError(t, err)
		require.True(t, gs.Formatted)
		require.Equal(t, fi.End+1, gs.NextAddress)
		require.Equal(t, remaining-8*records, gs.SpaceRemaining)
		next = gs.NextAddress
		remaining = gs.SpaceRemaining
	}
}

func TestReserveExhaustion(t *testing.T) {
	s, _ := newTestStore(t, testGeometry(), &Options{})

	// 13 64-byte records fill the 832-byte data region exactly.
	require.NoError(t, s.Create(1, 64, 13))
	gs, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, gs.SpaceRemaining)
	require.Equal(t, s.layout.DataAddr+s.layout.DataLen, gs.NextAddress)

	// Even a one-byte file no longer fits, and the failed create must not
	// move the counters.
	err = s.Create(2, 1, 1)
	require.ErrorIs(t, err, ErrInsufficientSpace)
	after, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, gs, after)
}

func TestDeleteDoesNotRefundSpace(t *testing.T) {
	s, _ := newTestStore(t, testGeometry(), &Options{})
	require.NoError(t, s.Create(1, 16, 4))
	before, err := s.Stats()
	require.NoError(t, err)

	// The bump allocator never reclaims: emptying a file changes nothing
	// and the next file is still carved after the first.
	require.NoError(t, s.DeleteAll(1))
	after, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, before, after)

	require.NoError(t, s.Create(2, 16, 1))
	fi1, err := s.Lookup(1)
	require.NoError(t, err)
	fi2, err := s.Lookup(2)
	require.NoError(t, err)
	require.Equal(t, fi1.End+1, fi2.Start)
}

func TestGlobalStatsString(t *testing.T) {
	require.Equal(t, "not formatted", GlobalStats{}.String())
	gs := GlobalStats{NextAddress: 0x1a0, SpaceRemaining: 512, Formatted: true}
	require.Equal(t, "next 0x01a0, 512 bytes remaining", gs.String())
}
