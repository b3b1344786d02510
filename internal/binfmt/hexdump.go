// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package binfmt

import (
	"bytes"
	"fmt"
	"io"
)

// HexDump returns a hex dump of data in rows of width bytes. Row addresses
// are printed relative to base, so a slice taken out of a larger address
// space keeps its true offsets.
func HexDump(data []byte, base, width int) string {
	var buf bytes.Buffer
	FHexDump(&buf, data, base, width)
	return buf.String()
}

// FHexDump writes a hex dump of data to w.
func FHexDump(w io.Writer, data []byte, base, width int) {
	if width <= 0 {
		width = 16
	}
	digits := 4
	for 1<<(4*digits) < base+len(data) {
		digits++
	}
	for i := 0; i < len(data); i += width {
		fmt.Fprintf(w, "0x%0*x ", digits, base+i)
		for j := 0; j < width; j++ {
			if j%8 == 0 {
				fmt.Fprint(w, " ")
			}
			if i+j < len(data) {
				fmt.Fprintf(w, "%02x ", data[i+j])
			} else {
				fmt.Fprint(w, "   ")
			}
		}
		fmt.Fprint(w, " |")
		for j := 0; j < width && i+j < len(data); j++ {
			b := data[i+j]
			if b < 32 || b > 126 {
				b = '.'
			}
			fmt.Fprintf(w, "%c", b)
		}
		fmt.Fprintln(w, "|")
	}
}
