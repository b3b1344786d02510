// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package medium

import "sync"

// NewMem returns a RAM-backed medium with the given geometry. The device
// starts zero-filled, matching a factory-fresh EEPROM.
func NewMem(g Geometry) *Mem {
	return &Mem{
		g:    g,
		data: make([]byte, g.Size()),
	}
}

// Mem implements Medium in memory. It is intended for tests, benchmarks and
// provisioning pipelines that assemble an image before flashing it.
//
// Unlike real devices, Mem is safe for concurrent use; the mutex exists so
// that test harnesses may inspect the device while an engine owns it.
type Mem struct {
	g  Geometry
	mu sync.Mutex

	data []byte
}

var _ Medium = (*Mem)(nil)

// ReadAt implements Medium.
func (m *Mem) ReadAt(p []byte, addr int) error {
	if err := checkRange(m.g, addr, len(p)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(p, m.data[addr:addr+len(p)])
	return nil
}

// WriteAt implements Medium.
func (m *Mem) WriteAt(p []byte, addr int) error {
	if err := checkRange(m.g, addr, len(p)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.data[addr:addr+len(p)], p)
	return nil
}

// Geometry implements Medium.
func (m *Mem) Geometry() Geometry { return m.g }

// Image returns a copy of the device contents. Useful for writing the state
// of an in-memory device out as a flashable image.
func (m *Mem) Image() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	img := make([]byte, len(m.data))
	copy(img, m.data)
	return img
}
