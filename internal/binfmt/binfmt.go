// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package binfmt exposes utilities for formatting binary data with
// descriptive comments.
package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// New constructs a new binary formatter over data.
func New(data []byte) *Formatter {
	offsetWidth := strconv.Itoa(max(len(strconv.Itoa(max(len(data)-1, 1))), 2))
	return &Formatter{
		data:            data,
		offsetFormatStr: "%0" + offsetWidth + "d-%0" + offsetWidth + "d: ",
	}
}

// Formatter is a utility for formatting binary data with descriptive
// comments. Formatting methods consume bytes from the current offset and
// buffer one output line per call; String assembles the buffered lines with
// the comments aligned.
type Formatter struct {
	buf   bytes.Buffer
	lines [][2]string // (binary data, comment) tuples
	data  []byte
	off   int

	offsetFormatStr string
}

// More returns true if there is unformatted data remaining.
func (f *Formatter) More() bool {
	return f.off < len(f.data)
}

// Offset returns the current offset within the data slice.
func (f *Formatter) Offset() int {
	return f.off
}

// PeekUint reads a little-endian unsigned integer of the specified byte
// width at the current offset, without advancing.
func (f *Formatter) PeekUint(w int) uint64 {
	switch w {
	case 1:
		return uint64(f.data[f.off])
	case 2:
		return uint64(binary.LittleEndian.Uint16(f.data[f.off:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(f.data[f.off:]))
	default:
		panic("unsupported width")
	}
}

// Byte formats a single byte in binary format, displaying each bit as a
// zero or one.
func (f *Formatter) Byte(format string, args ...interface{}) int {
	f.printOffsets(1)
	f.printf("b %08b", f.data[f.off])
	f.off++
	f.newline(f.buf.String(), fmt.Sprintf(format, args...))
	return 1
}

// HexBytesln formats the next n bytes in hexadecimal format, appending the
// formatted comment and ending the line.
func (f *Formatter) HexBytesln(n int, format string, args ...interface{}) int {
	f.printOffsets(n)
	f.printf("x %0"+strconv.Itoa(n*2)+"x", f.data[f.off:f.off+n])
	f.off += n
	f.newline(f.buf.String(), strings.TrimSpace(fmt.Sprintf(format, args...)))
	return n
}

// String returns the formatted output.
func (f *Formatter) String() string {
	f.buf.Reset()
	// Find the widest binary column so comments align on the right.
	binaryLineWidth := 0
	for _, lineData := range f.lines {
		binaryLineWidth = max(binaryLineWidth, len(lineData[0]))
	}
	for _, lineData := range f.lines {
		fmt.Fprint(&f.buf, lineData[0])
		if len(lineData[1]) > 0 {
			fmt.Fprint(&f.buf, strings.Repeat(" ", binaryLineWidth-len(lineData[0])))
			fmt.Fprint(&f.buf, " # ")
			fmt.Fprint(&f.buf, lineData[1])
		}
		fmt.Fprintln(&f.buf)
	}
	return f.buf.String()
}

func (f *Formatter) newline(binaryData, comment string) {
	f.lines = append(f.lines, [2]string{binaryData, comment})
	f.buf.Reset()
}

func (f *Formatter) printOffsets(n int) {
	f.printf(f.offsetFormatStr, f.off, f.off+n)
}

func (f *Formatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&f.buf, format, args...)
}
