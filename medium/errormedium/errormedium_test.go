// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package errormedium

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/thingpilot/eepromfs/medium"
)

func TestAlways(t *testing.T) {
	m := Wrap(medium.NewMem(medium.Geometry{PageSize: 32, Pages: 2}), Always())
	buf := make([]byte, 4)
	require.True(t, errors.Is(m.ReadAt(buf, 0), ErrInjected))
	require.True(t, errors.Is(m.WriteAt(buf, 0), ErrInjected))
}

func TestOnIndex(t *testing.T) {
	inner := medium.NewMem(medium.Geometry{PageSize: 32, Pages: 2})
	ii := OnIndex(2, Always())
	m := Wrap(inner, ii)

	buf := make([]byte, 4)
	require.NoError(t, m.WriteAt(buf, 0))
	require.NoError(t, m.ReadAt(buf, 0))
	require.True(t, errors.Is(m.ReadAt(buf, 0), ErrInjected))
	// After firing once the injector stays quiet.
	require.NoError(t, m.ReadAt(buf, 0))

	ii.SetIndex(0)
	require.True(t, errors.Is(m.WriteAt(buf, 0), ErrInjected))
}

func TestKindFilters(t *testing.T) {
	inner := medium.NewMem(medium.Geometry{PageSize: 32, Pages: 2})
	buf := make([]byte, 4)

	reads := Wrap(inner, Reads(Always()))
	require.True(t, errors.Is(reads.ReadAt(buf, 0), ErrInjected))
	require.NoError(t, reads.WriteAt(buf, 0))

	writes := Wrap(inner, Writes(Always()))
	require.NoError(t, writes.ReadAt(buf, 0))
	require.True(t, errors.Is(writes.WriteAt(buf, 0), ErrInjected))
}

func TestAnyAndOpDetails(t *testing.T) {
	inner := medium.NewMem(medium.Geometry{PageSize: 32, Pages: 2})

	var got []Op
	recorder := InjectorFunc(func(op Op) error {
		got = append(got, op)
		return nil
	})
	failAt16 := InjectorFunc(func(op Op) error {
		if op.Address == 16 {
			return ErrInjected
		}
		return nil
	})

	m := Wrap(inner, Any(recorder, failAt16))
	buf := make([]byte, 8)
	require.NoError(t, m.WriteAt(buf, 0))
	require.True(t, errors.Is(m.ReadAt(buf, 16), ErrInjected))

	require.Equal(t, []Op{
		{Kind: OpKindWrite, Address: 0, Length: 8},
		{Kind: OpKindRead, Address: 16, Length: 8},
	}, got)
}

func TestGeometryPassthrough(t *testing.T) {
	g := medium.Geometry{PageSize: 64, Pages: 16}
	m := Wrap(medium.NewMem(g), Always())
	require.Equal(t, g, m.Geometry())
}
