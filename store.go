// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package eepromfs implements a minimal flat-file record store for
// byte-addressable persistent memory, such as an I2C or SPI EEPROM, on
// devices that have no native filesystem.
//
// A formatted medium is carved into three fixed regions: one page of global
// allocator counters, a small file table, and the data region. Callers
// create a handful of files, each identified by a one-byte id and holding
// fixed-length records, and then append, overwrite, read and truncate
// records within them. File byte ranges are bump-allocated in creation order
// and never move or shrink; only a full Format reclaims space. Descriptor
// integrity is guarded by a one-byte additive checksum that doubles as the
// slot occupancy flag.
//
// The store is strictly single-caller. Every operation is a short sequence
// of synchronous medium reads and writes with no internal locking; callers
// that share a store across goroutines must serialize every call.
package eepromfs // import "github.com/thingpilot/eepromfs"

import (
	"github.com/cockroachdb/errors"
	"github.com/thingpilot/eepromfs/medium"
)

// Store manages the flat-file record store on one medium. Construct it with
// Open; the zero value is not usable.
//
// Multi-step operations are not transactional. If the medium fails partway
// through an operation the store returns the error immediately and leaves
// whatever state the completed writes produced; Create is the one exception,
// restoring the allocator counters when its later steps fail. Corrupted
// descriptors are detected by checksum on the next lookup, never repaired.
type Store struct {
	m       medium.Medium
	opts    *Options
	layout  Layout
	metrics storeMetrics
}

// Layout returns the region layout the store derived from the medium
// geometry and options.
func (s *Store) Layout() Layout { return s.layout }

// Stats returns a snapshot of the global allocator counters.
func (s *Store) Stats() (GlobalStats, error) {
	gs, err := s.readStats()
	if err != nil {
		return GlobalStats{}, err
	}
	return GlobalStats{
		NextAddress:    int(gs.next),
		SpaceRemaining: int(gs.remaining),
		Formatted:      gs.formatted(),
	}, nil
}

// Create allocates a file holding up to records fixed-size records of
// recordSize bytes each and enters it into the file table. The file's byte
// range is carved off the data region by bump allocation and is never
// reclaimed short of a full Format.
//
// Create fails with ErrFileExists if id is already taken, with
// ErrInsufficientSpace if the data region cannot hold the requested
// capacity, and with ErrTableFull if every table slot is occupied. If the
// table write fails after space was reserved, the allocator counters are
// restored so the reservation does not leak.
func (s *Store) Create(id FileID, recordSize, records int) error {
	if recordSize <= 0 {
		return errors.Newf("eepromfs: record size %d must be positive", recordSize)
	}
	if records <= 0 {
		return errors.Newf("eepromfs: record count %d must be positive", records)
	}
	if recordSize > maxMediumSize || records > maxMediumSize/recordSize {
		return errors.Wrapf(ErrInsufficientSpace,
			"%d records of %d bytes", records, recordSize)
	}
	if _, _, err := s.findByName(id); err == nil {
		return errors.Wrapf(ErrFileExists, "%s", id)
	} else if !errors.Is(err, ErrFileNotFound) {
		return err
	}

	requested := recordSize * records
	start, prev, err := s.reserve(requested)
	if err != nil {
		return err
	}
	d := descriptor{
		length: uint16(recordSize),
		start:  uint16(start),
		end:    uint16(start + requested - 1),
		next:   uint16(start),
		id:     id,
	}
	d.seal()

	slot, err := s.findFreeSlot()
	if err == nil {
		err = s.writeSlot(slot, d)
	}
	if err != nil {
		// The reservation is already persisted. Roll the counters back so the
		// bytes are not stranded outside any file.
		s.opts.Logger.Errorf("eepromfs: create %s failed after reserving %d bytes, restoring counters: %v",
			id, requested, err)
		if rerr := s.writeStats(prev); rerr != nil {
			return errors.CombineErrors(err, rerr)
		}
		return err
	}
	s.metrics.creates.Add(1)
	return nil
}

// Lookup returns a snapshot of the named file's descriptor.
func (s *Store) Lookup(id FileID) (FileInfo, error) {
	d, _, err := s.findByName(id)
	if err != nil {
		return FileInfo{}, err
	}
	s.metrics.lookups.Add(1)
	return d.info(), nil
}

// Files returns snapshots of every live descriptor in slot order.
func (s *Store) Files() ([]FileInfo, error) {
	var infos []FileInfo
	err := s.scanTable(func(_ int, d descriptor) bool {
		if d.occupied() {
			infos = append(infos, d.info())
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Read fills p with the record at the given index. It fails with
// ErrLengthMismatch if len(p) differs from the file's record size and with
// ErrInvalidIndex if index does not address a written record.
func (s *Store) Read(id FileID, index int, p []byte) error {
	d, _, err := s.findByName(id)
	if err != nil {
		return err
	}
	if len(p) != int(d.length) {
		return errors.Wrapf(ErrLengthMismatch,
			"%d-byte buffer for %d-byte records", len(p), d.length)
	}
	if index < 0 || index >= d.writtenEntries() {
		return errors.Wrapf(ErrInvalidIndex,
			"index %d of %d written", index, d.writtenEntries())
	}
	if err := s.mediumRead(p, int(d.start)+index*int(d.length)); err != nil {
		return err
	}
	s.metrics.reads.Add(1)
	return nil
}

// Append writes p as the record after the last written one and advances the
// file's write cursor. It fails with ErrLengthMismatch if len(p) differs
// from the file's record size and with ErrFileFull if the file already holds
// its full record count.
func (s *Store) Append(id FileID, p []byte) error {
	d, _, err := s.findByName(id)
	if err != nil {
		return err
	}
	if len(p) != int(d.length) {
		return errors.Wrapf(ErrLengthMismatch,
			"%d-byte record for %d-byte records", len(p), d.length)
	}
	if int(d.next)+len(p)-1 > int(d.end) {
		return errors.Wrapf(ErrFileFull,
			"%s holds all %d records", id, d.capacityEntries())
	}
	if err := s.mediumWrite(p, int(d.next)); err != nil {
		return err
	}
	d.next += uint16(len(p))
	d.seal()
	if err := s.modifyFile(d); err != nil {
		return err
	}
	s.metrics.appends.Add(1)
	return nil
}

// Overwrite replaces the file's whole content with the single record p: it
// writes p at the start of the file's range and resets the write cursor to
// just past it. It fails with ErrLengthMismatch if len(p) differs from the
// file's record size.
func (s *Store) Overwrite(id FileID, p []byte) error {
	d, _, err := s.findByName(id)
	if err != nil {
		return err
	}
	if len(p) != int(d.length) {
		return errors.Wrapf(ErrLengthMismatch,
			"%d-byte record for %d-byte records", len(p), d.length)
	}
	if err := s.mediumWrite(p, int(d.start)); err != nil {
		return err
	}
	d.next = d.start + uint16(len(p))
	d.seal()
	if err := s.modifyFile(d); err != nil {
		return err
	}
	s.metrics.overwrites.Add(1)
	return nil
}

// DeleteAll logically truncates the file to empty by resetting its write
// cursor. The record bytes stay on the medium until overwritten. DeleteAll
// of an already empty file is a no-op that still rewrites the descriptor.
func (s *Store) DeleteAll(id FileID) error {
	d, _, err := s.findByName(id)
	if err != nil {
		return err
	}
	d.next = d.start
	d.seal()
	if err := s.modifyFile(d); err != nil {
		return err
	}
	s.metrics.deletes.Add(1)
	return nil
}

// TruncateHead drops the oldest n records, compacting the survivors to the
// start of the file's range one record at a time and pulling the write
// cursor back so the freed capacity is appendable again. n of at least the
// written count empties the file like DeleteAll; n of zero or less is a
// no-op.
//
// The shift is not atomic: a medium failure mid-way leaves some records
// moved and the cursor untouched. Rereading after such a failure returns a
// mix of shifted and unshifted records.
func (s *Store) TruncateHead(id FileID, n int) error {
	d, _, err := s.findByName(id)
	if err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	written := d.writtenEntries()
	if n < written {
		recordLen := int(d.length)
		buf := make([]byte, recordLen)
		for i := n; i < written; i++ {
			if err := s.mediumRead(buf, int(d.start)+i*recordLen); err != nil {
				return err
			}
			if err := s.mediumWrite(buf, int(d.start)+(i-n)*recordLen); err != nil {
				return err
			}
		}
		d.next = d.start + uint16((written-n)*recordLen)
	} else {
		d.next = d.start
	}
	d.seal()
	if err := s.modifyFile(d); err != nil {
		return err
	}
	s.metrics.truncates.Add(1)
	return nil
}

// WrittenEntries returns the number of records written to the file.
func (s *Store) WrittenEntries(id FileID) (int, error) {
	d, _, err := s.findByName(id)
	if err != nil {
		return 0, err
	}
	return d.writtenEntries(), nil
}

// RemainingEntries returns the number of records the file can still accept.
func (s *Store) RemainingEntries(id FileID) (int, error) {
	d, _, err := s.findByName(id)
	if err != nil {
		return 0, err
	}
	return d.capacityEntries() - d.writtenEntries(), nil
}

// RemainingBytes returns the unwritten byte count of the file's range.
func (s *Store) RemainingBytes(id FileID) (int, error) {
	d, _, err := s.findByName(id)
	if err != nil {
		return 0, err
	}
	return int(d.end) + 1 - int(d.next), nil
}

// FileCount returns the number of live files.
func (s *Store) FileCount() (int, error) {
	count := 0
	err := s.scanTable(func(_ int, d descriptor) bool {
		if d.occupied() {
			count++
		}
		return false
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FreeSlots returns the number of file table slots available for Create.
func (s *Store) FreeSlots() (int, error) {
	count, err := s.FileCount()
	if err != nil {
		return 0, err
	}
	return s.layout.MaxSlots() - count, nil
}
