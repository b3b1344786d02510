// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"fmt"
	"io"

	"github.com/thingpilot/eepromfs/internal/binfmt"
	"github.com/thingpilot/eepromfs/medium"
)

// DescribeImage writes an annotated field-by-field dump of the filesystem
// structures on m: the global stats block and every file table slot. It
// decodes whatever bytes are present, without requiring the medium to carry
// a valid formatted sentinel, so it can be pointed at corrupt or blank
// images. The data region is not dumped.
func DescribeImage(w io.Writer, m medium.Medium, opts *Options) error {
	opts = opts.Clone()
	opts.EnsureDefaults()
	g := m.Geometry()
	if err := opts.Validate(g); err != nil {
		return err
	}
	l := computeLayout(g, opts.FileTablePages)

	buf := make([]byte, globalStatsSize)
	if err := m.ReadAt(buf, l.GlobalStatsAddr); err != nil {
		return err
	}
	gs := decodeGlobalStats(buf)
	f := binfmt.New(buf)
	f.HexBytesln(2, "next = 0x%04x", gs.next)
	f.HexBytesln(2, "remaining = %d", gs.remaining)
	if gs.formatted() {
		f.HexBytesln(4, "magic = %#08x (formatted)", gs.magic)
	} else {
		f.HexBytesln(4, "magic = %#08x (not formatted)", gs.magic)
	}
	fmt.Fprintf(w, "global stats @ 0x%04x\n%s", l.GlobalStatsAddr, f)

	slotBuf := make([]byte, descriptorSize)
	for slot := 0; slot < l.MaxSlots(); slot++ {
		addr := l.slotAddr(slot)
		if err := m.ReadAt(slotBuf, addr); err != nil {
			return err
		}
		d := decodeDescriptor(slotBuf)
		if d == (descriptor{}) {
			fmt.Fprintf(w, "slot %d @ 0x%04x: empty\n", slot, addr)
			continue
		}
		state := "live"
		if !d.occupied() {
			state = "invalid"
		}
		f := binfmt.New(slotBuf)
		f.HexBytesln(2, "length = %d", d.length)
		f.HexBytesln(2, "start = 0x%04x", d.start)
		f.HexBytesln(2, "end = 0x%04x", d.end)
		f.HexBytesln(2, "next = 0x%04x", d.next)
		f.HexBytesln(1, "id = %d", d.id)
		f.Byte("valid = %d (computed %d)", d.valid, d.sealValue())
		fmt.Fprintf(w, "slot %d @ 0x%04x: %s\n%s", slot, addr, state, f)
	}
	return nil
}
