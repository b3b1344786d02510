// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package medium

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/thingpilot/eepromfs/internal/invariants"
)

func TestGeometrySize(t *testing.T) {
	g := Geometry{PageSize: 64, Pages: 512}
	require.Equal(t, 32768, g.Size())
}

func TestMemReadWrite(t *testing.T) {
	m := NewMem(Geometry{PageSize: 64, Pages: 4})

	// A fresh device reads back zeroes.
	buf := make([]byte, 16)
	require.NoError(t, m.ReadAt(buf, 0))
	require.Equal(t, make([]byte, 16), buf)

	// Writes may cross page boundaries.
	payload := bytes.Repeat([]byte{0xa5}, 100)
	require.NoError(t, m.WriteAt(payload, 30))

	got := make([]byte, 100)
	require.NoError(t, m.ReadAt(got, 30))
	require.Equal(t, payload, got)

	// Neighboring bytes are untouched.
	edge := make([]byte, 2)
	require.NoError(t, m.ReadAt(edge, 28))
	require.Equal(t, []byte{0, 0}, edge)
}

func TestMemOutOfRange(t *testing.T) {
	m := NewMem(Geometry{PageSize: 32, Pages: 2})

	buf := make([]byte, 8)
	require.True(t, errors.Is(m.ReadAt(buf, 60), ErrOutOfRange))
	require.True(t, errors.Is(m.WriteAt(buf, -1), ErrOutOfRange))
	require.True(t, errors.Is(m.WriteAt(buf, 64), ErrOutOfRange))

	// The final in-range byte is accessible.
	require.NoError(t, m.WriteAt([]byte{1}, 63))
	require.NoError(t, m.ReadAt(buf[:1], 63))
	require.Equal(t, byte(1), buf[0])
}

func TestMemImage(t *testing.T) {
	m := NewMem(Geometry{PageSize: 16, Pages: 2})
	require.NoError(t, m.WriteAt([]byte{1, 2, 3}, 5))

	img := m.Image()
	require.Len(t, img, 32)
	require.Equal(t, []byte{1, 2, 3}, img[5:8])

	// The image is a copy.
	img[5] = 0xff
	got := make([]byte, 1)
	require.NoError(t, m.ReadAt(got, 5))
	require.Equal(t, byte(1), got[0])
}

func TestFileMedium(t *testing.T) {
	g := Geometry{PageSize: 64, Pages: 8}
	path := filepath.Join(t.TempDir(), "device.img")

	f, err := CreateFile(path, g)
	require.NoError(t, err)
	require.Equal(t, g, f.Geometry())
	require.Equal(t, path, f.Path())

	payload := []byte("fixed-size record")
	require.NoError(t, f.WriteAt(payload, 128))
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	// Reopen and read back.
	f, err = OpenFile(path, g)
	require.NoError(t, err)
	got := make([]byte, len(payload))
	require.NoError(t, f.ReadAt(got, 128))
	require.Equal(t, payload, got)

	// The rest of the image is zero-filled.
	head := make([]byte, 128)
	require.NoError(t, f.ReadAt(head, 0))
	require.Equal(t, make([]byte, 128), head)

	require.True(t, errors.Is(f.WriteAt(payload, g.Size()), ErrOutOfRange))
	require.NoError(t, f.Close())
}

func TestFileDoubleClose(t *testing.T) {
	if !invariants.Enabled {
		t.Skip("close tracking needs the invariants build tag")
	}
	f, err := CreateFile(filepath.Join(t.TempDir(), "device.img"), Geometry{PageSize: 64, Pages: 8})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Panics(t, func() { _ = f.Close() })
}

func TestFileMediumGeometryMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")

	f, err := CreateFile(path, Geometry{PageSize: 64, Pages: 8})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = OpenFile(path, Geometry{PageSize: 64, Pages: 16})
	require.Error(t, err)

	// Creating over an existing image is refused.
	_, err = CreateFile(path, Geometry{PageSize: 64, Pages: 8})
	require.Error(t, err)
}
