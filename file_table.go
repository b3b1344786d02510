// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import "github.com/cockroachdb/errors"

// The file table is a flat array of descriptor slots scanned linearly in
// address order. There is no free bitmap: a slot is free exactly when its
// validity byte fails the checksum test, which is what both a freshly
// formatted table (all zeroes) and a corrupted slot look like. The table is
// at most a few pages, so every lookup rereads it from the medium rather
// than caching descriptors that another formatting of the image could
// invalidate.

func (s *Store) readSlot(slot int) (descriptor, error) {
	var buf [descriptorSize]byte
	if err := s.mediumRead(buf[:], s.layout.slotAddr(slot)); err != nil {
		return descriptor{}, err
	}
	return decodeDescriptor(buf[:]), nil
}

func (s *Store) writeSlot(slot int, d descriptor) error {
	var buf [descriptorSize]byte
	d.encode(buf[:])
	return s.mediumWrite(buf[:], s.layout.slotAddr(slot))
}

// scanTable invokes fn for every slot in address order, occupied or not,
// stopping early when fn returns true.
func (s *Store) scanTable(fn func(slot int, d descriptor) (done bool)) error {
	for slot := 0; slot < s.layout.MaxSlots(); slot++ {
		d, err := s.readSlot(slot)
		if err != nil {
			return err
		}
		if fn(slot, d) {
			return nil
		}
	}
	return nil
}

// findByName returns the first occupied descriptor carrying id, along with
// its slot index.
func (s *Store) findByName(id FileID) (descriptor, int, error) {
	var (
		found descriptor
		at    = -1
	)
	err := s.scanTable(func(slot int, d descriptor) bool {
		if d.occupied() && d.id == id {
			found, at = d, slot
			return true
		}
		return false
	})
	if err != nil {
		return descriptor{}, 0, err
	}
	if at < 0 {
		return descriptor{}, 0, errors.Wrapf(ErrFileNotFound, "%s", id)
	}
	return found, at, nil
}

// findFreeSlot returns the index of the first slot not holding a live
// descriptor.
func (s *Store) findFreeSlot() (int, error) {
	at := -1
	err := s.scanTable(func(slot int, d descriptor) bool {
		if !d.occupied() {
			at = slot
			return true
		}
		return false
	})
	if err != nil {
		return 0, err
	}
	if at < 0 {
		return 0, ErrTableFull
	}
	return at, nil
}

// modifyFile re-locates the slot holding d.id and overwrites it in place.
// Record operations persist updated write cursors through here; the re-scan
// keeps the slot index out of the descriptor, which stores only what the
// medium needs to survive a power cycle.
func (s *Store) modifyFile(d descriptor) error {
	_, slot, err := s.findByName(d.id)
	if err != nil {
		return err
	}
	return s.writeSlot(slot, d)
}
