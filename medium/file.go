// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package medium

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/thingpilot/eepromfs/internal/invariants"
)

// File implements Medium over a raw device image stored in a regular file.
// Byte i of the file is byte i of the device. It is the medium used by the
// eepromfs command-line tool to inspect and provision images offline.
type File struct {
	g      Geometry
	closed invariants.CloseChecker
	f      *os.File
	path   string
}

var _ Medium = (*File)(nil)

// CreateFile creates a zero-filled image of g.Size() bytes at path and
// returns it as a medium. It fails if path already exists.
func CreateFile(path string, g Geometry) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(g.Size())); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &File{g: g, f: f, path: path}, nil
}

// OpenFile opens an existing image at path. The file size must equal
// g.Size(); a mismatch almost always means the geometry flags do not match
// the device the image was taken from.
func OpenFile(path string, g Geometry) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.Size() != int64(g.Size()) {
		_ = f.Close()
		return nil, errors.Newf("medium: image %q is %d bytes, geometry wants %d", path, fi.Size(), g.Size())
	}
	return &File{g: g, f: f, path: path}, nil
}

// ReadAt implements Medium.
func (m *File) ReadAt(p []byte, addr int) error {
	m.closed.AssertNotClosed()
	if err := checkRange(m.g, addr, len(p)); err != nil {
		return err
	}
	_, err := m.f.ReadAt(p, int64(addr))
	return err
}

// WriteAt implements Medium.
func (m *File) WriteAt(p []byte, addr int) error {
	m.closed.AssertNotClosed()
	if err := checkRange(m.g, addr, len(p)); err != nil {
		return err
	}
	_, err := m.f.WriteAt(p, int64(addr))
	return err
}

// Geometry implements Medium.
func (m *File) Geometry() Geometry { return m.g }

// Path returns the image path the medium was opened from.
func (m *File) Path() string { return m.path }

// Sync flushes the image to stable storage.
func (m *File) Sync() error { return m.f.Sync() }

// Close releases the underlying file handle. Closing twice panics in
// invariant builds.
func (m *File) Close() error {
	m.closed.Close()
	return m.f.Close()
}
