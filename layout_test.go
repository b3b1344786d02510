// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thingpilot/eepromfs/medium"
)

func TestComputeLayout(t *testing.T) {
	l := computeLayout(medium.Geometry{PageSize: 64, Pages: 16}, 2)
	require.Equal(t, Layout{
		GlobalStatsAddr: 0,
		GlobalStatsLen:  64,
		TableAddr:       64,
		TableLen:        128,
		DataAddr:        192,
		DataLen:         832,
	}, l)
	require.Equal(t, 12, l.MaxSlots())
	require.Equal(t, 64, l.slotAddr(0))
	require.Equal(t, 64+descriptorSize, l.slotAddr(1))
	require.Equal(t,
		"stats [0x0000, 0x0040) table [0x0040, 0x00c0) data [0x00c0, 0x0400) slots 12",
		l.String())
}

func TestComputeLayoutFullAddressSpace(t *testing.T) {
	// On a medium that fills the entire 16-bit address space the final data
	// byte stays unallocated so that full-file write cursors remain
	// representable.
	l := computeLayout(medium.Geometry{PageSize: 256, Pages: 256}, 2)
	require.Equal(t, 768, l.DataAddr)
	require.Equal(t, 64767, l.DataLen)
	require.Equal(t, maxMediumSize-1, l.DataAddr+l.DataLen)

	// One page short of the cap, nothing is shaved.
	l = computeLayout(medium.Geometry{PageSize: 256, Pages: 255}, 2)
	require.Equal(t, 65280-768, l.DataLen)
}

func TestLayoutTableSizing(t *testing.T) {
	// The slot count is the whole table region over the descriptor size, not
	// a per-page count: slots may straddle page boundaries.
	wantSlots := []int{6, 12, 19, 25}
	for i, want := range wantSlots {
		l := computeLayout(medium.Geometry{PageSize: 64, Pages: 32}, i+1)
		require.Equal(t, want, l.MaxSlots(), "tablePages=%d", i+1)
	}
}
