// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package binfmt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

func TestHexDump(t *testing.T) {
	datadriven.RunTest(t, "testdata/hexdump", func(t *testing.T, td *datadriven.TestData) string {
		base, width := 0, 16
		td.MaybeScanArgs(t, "base", &base)
		td.MaybeScanArgs(t, "width", &width)
		switch td.Cmd {
		case "sequential":
			var size int
			td.ScanArgs(t, "size", &size)
			data := make([]byte, size)
			for i := range data {
				data[i] = byte(i)
			}
			return HexDump(data, base, width)
		case "text":
			return HexDump([]byte(strings.TrimSpace(td.Input)), base, width)
		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}
