// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"encoding/binary"

	"github.com/cockroachdb/redact"
	"github.com/thingpilot/eepromfs/internal/invariants"
)

// FileID names a file in the table. IDs are caller-chosen 8-bit values with
// no reserved range; the store never interprets them.
type FileID uint8

// String implements fmt.Stringer.
func (id FileID) String() string {
	return redact.StringWithoutMarkers(id)
}

// SafeFormat implements redact.SafeFormatter.
func (id FileID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("file-%03d", redact.SafeUint(id))
}

// A descriptor is one file table slot. On-medium encoding (little endian):
//
//	+-------------+------------+------------+------------+---------+-----------+
//	| length (2B) | start (2B) | end (2B)   | next (2B)  | id (1B) | valid (1B)|
//	+-------------+------------+------------+------------+---------+-----------+
//
// start and end are the inclusive bounds of the file's reserved byte range,
// so end-start+1 is always a whole number of records. next is a one-past
// cursor and equals end+1 when the file is full.
//
// valid holds the additive checksum of the other fields and doubles as the
// occupancy flag: a slot is live iff valid is non-zero and matches the value
// the fields seal to. An erased slot is all zeroes and always reads as free.
// A field sum of 0 mod 256 would collide with the erased sentinel, so those
// descriptors seal to zeroValid instead; every cursor position must be
// storable, and one in 256 of them lands on a zero sum. A zero record size
// also reads as free: no create produces one, so it can only arrive through
// the sum's multiple-of-256 blind spot, and the entry counts divide by it.
//
// Only next and valid change after creation.
type descriptor struct {
	length uint16 // record size in bytes
	start  uint16 // first data byte of the file
	end    uint16 // last data byte of the file, inclusive
	next   uint16 // write cursor: address of the next record to append
	id     FileID
	valid  uint8
}

const descriptorSize = 10

// zeroValid is stored in place of a computed checksum of 0, which would
// collide with the erased-slot sentinel.
const zeroValid = 0x5a

// checksum returns the additive checksum over every field except valid.
func (d descriptor) checksum() uint8 {
	sum := uint32(d.id) + uint32(d.length) + uint32(d.start) + uint32(d.end) + uint32(d.next)
	return uint8(sum % 256)
}

// sealValue returns the validity byte a live descriptor stores: the field
// checksum, or zeroValid when the sum lands on the erased sentinel.
func (d descriptor) sealValue() uint8 {
	if c := d.checksum(); c != 0 {
		return c
	}
	return zeroValid
}

// occupied reports whether the slot holds a live file.
func (d descriptor) occupied() bool {
	return d.valid != 0 && d.length != 0 && d.valid == d.sealValue()
}

// seal stamps the validity byte so the descriptor reads back as occupied.
func (d *descriptor) seal() {
	d.valid = d.sealValue()
}

func (d descriptor) encode(p []byte) {
	_ = p[descriptorSize-1]
	binary.LittleEndian.PutUint16(p[0:2], d.length)
	binary.LittleEndian.PutUint16(p[2:4], d.start)
	binary.LittleEndian.PutUint16(p[4:6], d.end)
	binary.LittleEndian.PutUint16(p[6:8], d.next)
	p[8] = uint8(d.id)
	p[9] = d.valid
}

func decodeDescriptor(p []byte) descriptor {
	_ = p[descriptorSize-1]
	return descriptor{
		length: binary.LittleEndian.Uint16(p[0:2]),
		start:  binary.LittleEndian.Uint16(p[2:4]),
		end:    binary.LittleEndian.Uint16(p[4:6]),
		next:   binary.LittleEndian.Uint16(p[6:8]),
		id:     FileID(p[8]),
		valid:  p[9],
	}
}

// writtenEntries returns the number of records before the write cursor.
func (d descriptor) writtenEntries() int {
	return invariants.SafeSub(int(d.next), int(d.start)) / int(d.length)
}

// capacityEntries returns the number of records the file can hold.
func (d descriptor) capacityEntries() int {
	return invariants.SafeSub(int(d.end)+1, int(d.start)) / int(d.length)
}

func (d descriptor) info() FileInfo {
	return FileInfo{
		ID:         d.id,
		RecordSize: int(d.length),
		Start:      int(d.start),
		End:        int(d.end),
		Next:       int(d.next),
	}
}

// FileInfo is a read-only snapshot of one file's descriptor.
type FileInfo struct {
	ID         FileID
	RecordSize int // bytes per record
	Start      int // address of the file's first data byte
	End        int // address of the file's last data byte, inclusive
	Next       int // write cursor at snapshot time
}

// Capacity returns the total number of records the file can hold.
func (fi FileInfo) Capacity() int {
	return (fi.End - fi.Start + 1) / fi.RecordSize
}

// Written returns the number of records written so far.
func (fi FileInfo) Written() int {
	return (fi.Next - fi.Start) / fi.RecordSize
}

// Remaining returns the number of records that can still be appended.
func (fi FileInfo) Remaining() int {
	return fi.Capacity() - fi.Written()
}

// RemainingBytes returns the unwritten byte count of the file's region.
func (fi FileInfo) RemainingBytes() int {
	return fi.End + 1 - fi.Next
}

// String implements fmt.Stringer.
func (fi FileInfo) String() string {
	return redact.StringWithoutMarkers(fi)
}

// SafeFormat implements redact.SafeFormatter.
func (fi FileInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s: %d-byte records, %d/%d written, range [0x%04x, 0x%04x], cursor 0x%04x",
		fi.ID, redact.Safe(fi.RecordSize), redact.Safe(fi.Written()),
		redact.Safe(fi.Capacity()), redact.Safe(fi.Start), redact.Safe(fi.End),
		redact.Safe(fi.Next))
}
