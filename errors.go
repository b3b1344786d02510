// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import "github.com/cockroachdb/errors"

// Sentinel errors returned by the store. Callers match them with errors.Is;
// operations attach context (the file id, the offending sizes) by wrapping.
// Errors returned by the medium itself are propagated unchanged.
var (
	// ErrNotFormatted is returned by Open when the global stats region does
	// not carry the formatted-medium sentinel.
	ErrNotFormatted = errors.New("eepromfs: medium not formatted")

	// ErrMediumTooLarge is returned when the medium does not fit the 16-bit
	// on-medium address space.
	ErrMediumTooLarge = errors.New("eepromfs: medium exceeds 16-bit address space")

	// ErrFileExists is returned by Create when a valid descriptor already
	// carries the requested id.
	ErrFileExists = errors.New("eepromfs: file already exists")

	// ErrTableFull is returned by Create when every file table slot is
	// occupied.
	ErrTableFull = errors.New("eepromfs: file table full")

	// ErrFileNotFound is returned when no valid descriptor matches the id.
	ErrFileNotFound = errors.New("eepromfs: file not found")

	// ErrInsufficientSpace is returned by Create when the data region cannot
	// hold the requested capacity.
	ErrInsufficientSpace = errors.New("eepromfs: insufficient space")

	// ErrLengthMismatch is returned by record operations when the caller's
	// buffer length differs from the file's record size.
	ErrLengthMismatch = errors.New("eepromfs: buffer length does not match record size")

	// ErrFileFull is returned by Append when the file cannot hold another
	// record.
	ErrFileFull = errors.New("eepromfs: file full")

	// ErrInvalidIndex is returned by Read when the record index falls
	// outside the written prefix of the file.
	ErrInvalidIndex = errors.New("eepromfs: record index out of range")
)
