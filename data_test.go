// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
	"github.com/thingpilot/eepromfs/medium"
)

// testLogger routes store lifecycle messages to the test log.
type testLogger struct {
	tb testing.TB
}

func (l testLogger) Infof(format string, args ...interface{})  { l.tb.Logf(format, args...) }
func (l testLogger) Errorf(format string, args ...interface{}) { l.tb.Logf(format, args...) }
func (l testLogger) Fatalf(format string, args ...interface{}) { l.tb.Fatalf(format, args...) }

func testGeometry() medium.Geometry {
	return medium.Geometry{PageSize: 64, Pages: 16}
}

// newTestStore formats a fresh in-memory medium and opens a store over it.
// Settle delays are counted by the store but never slept.
func newTestStore(tb testing.TB, g medium.Geometry, opts *Options) (*Store, *medium.Mem) {
	tb.Helper()
	opts = opts.Clone()
	opts.Logger = testLogger{tb}
	opts.sleep = func(time.Duration) {}
	m := medium.NewMem(g)
	require.NoError(tb, Format(m, opts))
	s, err := Open(m, opts)
	require.NoError(tb, err)
	return s, m
}

// TestStoreOps runs the full operation surface from a datadriven script.
// Single-line commands print either their result or the error; append takes
// one hex payload per input line and prints the cursor after each.
func TestStoreOps(t *testing.T) {
	var (
		m    *medium.Mem
		s    *Store
		opts *Options
	)
	open := func() string {
		var err error
		if s, err = Open(m, opts); err != nil {
			return err.Error()
		}
		return "ok"
	}
	fileInfo := func(id int) string {
		fi, err := s.Lookup(FileID(id))
		if err != nil {
			return err.Error()
		}
		return fi.String()
	}

	datadriven.RunTest(t, "testdata/store_ops", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "format":
			g := testGeometry()
			td.MaybeScanArgs(t, "page-size", &g.PageSize)
			td.MaybeScanArgs(t, "pages", &g.Pages)
			opts = &Options{Logger: testLogger{t}, sleep: func(time.Duration) {}}
			td.MaybeScanArgs(t, "table-pages", &opts.FileTablePages)
			m = medium.NewMem(g)
			if err := Format(m, opts); err != nil {
				return err.Error()
			}
			if out := open(); out != "ok" {
				return out
			}
			return s.Layout().String()

		case "reformat":
			if err := Format(m, opts); err != nil {
				return err.Error()
			}
			return open()

		case "reopen":
			return open()

		case "create":
			var id, recordSize, records int
			td.ScanArgs(t, "id", &id)
			td.ScanArgs(t, "record-size", &recordSize)
			td.ScanArgs(t, "records", &records)
			if err := s.Create(FileID(id), recordSize, records); err != nil {
				return err.Error()
			}
			return fileInfo(id)

		case "append":
			var id int
			td.ScanArgs(t, "id", &id)
			var sb strings.Builder
			for _, line := range crstrings.Lines(td.Input) {
				p, err := hex.DecodeString(line)
				require.NoError(t, err)
				if err := s.Append(FileID(id), p); err != nil {
					fmt.Fprintf(&sb, "%v\n", err)
					continue
				}
				fi, err := s.Lookup(FileID(id))
				require.NoError(t, err)
				fmt.Fprintf(&sb, "cursor 0x%04x\n", fi.Next)
			}
			return sb.String()

		case "overwrite":
			var id int
			td.ScanArgs(t, "id", &id)
			p, err := hex.DecodeString(strings.TrimSpace(td.Input))
			require.NoError(t, err)
			if err := s.Overwrite(FileID(id), p); err != nil {
				return err.Error()
			}
			return fileInfo(id)

		case "read":
			var id, index int
			td.ScanArgs(t, "id", &id)
			td.ScanArgs(t, "index", &index)
			size := 0
			if fi, err := s.Lookup(FileID(id)); err == nil {
				size = fi.RecordSize
			}
			td.MaybeScanArgs(t, "len", &size)
			p := make([]byte, size)
			if err := s.Read(FileID(id), index, p); err != nil {
				return err.Error()
			}
			return hex.EncodeToString(p)

		case "read-all":
			var id int
			td.ScanArgs(t, "id", &id)
			fi, err := s.Lookup(FileID(id))
			if err != nil {
				return err.Error()
			}
			var sb strings.Builder
			for i := 0; i < fi.Written(); i++ {
				p := make([]byte, fi.RecordSize)
				if err := s.Read(FileID(id), i, p); err != nil {
					return err.Error()
				}
				fmt.Fprintf(&sb, "%d: %s\n", i, hex.EncodeToString(p))
			}
			return sb.String()

		case "delete-all":
			var id int
			td.ScanArgs(t, "id", &id)
			if err := s.DeleteAll(FileID(id)); err != nil {
				return err.Error()
			}
			return fileInfo(id)

		case "truncate-head":
			var id, n int
			td.ScanArgs(t, "id", &id)
			td.ScanArgs(t, "n", &n)
			if err := s.TruncateHead(FileID(id), n); err != nil {
				return err.Error()
			}
			return fileInfo(id)

		case "ls":
			infos, err := s.Files()
			if err != nil {
				return err.Error()
			}
			var sb strings.Builder
			for _, fi := range infos {
				fmt.Fprintf(&sb, "%s\n", fi)
			}
			return sb.String()

		case "stats":
			gs, err := s.Stats()
			if err != nil {
				return err.Error()
			}
			files, err := s.FileCount()
			if err != nil {
				return err.Error()
			}
			free, err := s.FreeSlots()
			if err != nil {
				return err.Error()
			}
			return fmt.Sprintf("%s\nfiles %d, free slots %d\n", gs, files, free)

		case "counts":
			var id int
			td.ScanArgs(t, "id", &id)
			written, err := s.WrittenEntries(FileID(id))
			if err != nil {
				return err.Error()
			}
			remaining, err := s.RemainingEntries(FileID(id))
			require.NoError(t, err)
			bytes, err := s.RemainingBytes(FileID(id))
			require.NoError(t, err)
			return fmt.Sprintf("written %d, remaining %d, remaining-bytes %d\n",
				written, remaining, bytes)

		case "corrupt":
			// Flip one on-medium byte behind the store's back.
			var addr int
			td.ScanArgs(t, "addr", &addr)
			xor := 0xff
			td.MaybeScanArgs(t, "xor", &xor)
			b := make([]byte, 1)
			require.NoError(t, m.ReadAt(b, addr))
			b[0] ^= byte(xor)
			require.NoError(t, m.WriteAt(b, addr))
			return ""

		case "describe":
			var sb strings.Builder
			if err := DescribeImage(&sb, m, opts); err != nil {
				return err.Error()
			}
			return sb.String()

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}

// TestLayoutScripts exercises geometry validation and region layout across
// configurations.
func TestLayoutScripts(t *testing.T) {
	datadriven.RunTest(t, "testdata/layout", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "layout":
			var g medium.Geometry
			td.ScanArgs(t, "page-size", &g.PageSize)
			td.ScanArgs(t, "pages", &g.Pages)
			opts := &Options{}
			td.MaybeScanArgs(t, "table-pages", &opts.FileTablePages)
			opts.EnsureDefaults()
			if err := opts.Validate(g); err != nil {
				return err.Error()
			}
			l := computeLayout(g, opts.FileTablePages)
			return fmt.Sprintf("%s\ndata bytes %d\n", l, l.DataLen)

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}
