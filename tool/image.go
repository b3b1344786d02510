// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/thingpilot/eepromfs"
	"github.com/thingpilot/eepromfs/internal/binfmt"
	"github.com/thingpilot/eepromfs/medium"
)

// imageT implements image-level tools: provisioning a filesystem onto an
// image file and inspecting or editing the files it holds.
type imageT struct {
	Root *cobra.Command

	// Flags.
	pageSize   int
	tablePages int
	pages      int
	fileID     int
	recordSize int
	records    int
	index      int
	count      int
	withData   bool
	fmtRecord  formatter
}

func newImage() *imageT {
	i := &imageT{}
	i.fmtRecord.mustSet("hex")

	i.Root = &cobra.Command{
		Use:   "image",
		Short: "EEPROM image tools",
		Long: `
Tools for inspecting and editing EEPROM image files. An image is a plain file
holding a byte-for-byte copy of the device contents; its size must be a whole
number of pages. Except for format, the commands derive the page count from
the image size, so only --page-size and --table-pages have to match the
values the filesystem was created with.
`,
	}
	i.Root.PersistentFlags().IntVar(
		&i.pageSize, "page-size", 64, "physical page size of the device in bytes")
	i.Root.PersistentFlags().IntVar(
		&i.tablePages, "table-pages", 2, "pages reserved for the file table")

	format := &cobra.Command{
		Use:   "format <image>",
		Short: "initialize an empty filesystem",
		Long: `
Initialize an empty filesystem on the image: erase the file table and write
fresh allocator counters. The image file is created zero-filled if it does
not exist. Any files the image previously held become unreachable.
`,
		Args: cobra.ExactArgs(1),
		Run:  i.runFormat,
	}
	format.Flags().IntVar(&i.pages, "pages", 16, "number of pages on the device")

	info := &cobra.Command{
		Use:   "info <image>",
		Short: "print filesystem layout and allocator counters",
		Args:  cobra.ExactArgs(1),
		Run:   i.runInfo,
	}

	ls := &cobra.Command{
		Use:   "ls <image>",
		Short: "list the files in slot order",
		Args:  cobra.ExactArgs(1),
		Run:   i.runLs,
	}

	create := &cobra.Command{
		Use:   "create <image>",
		Short: "create a fixed-length-record file",
		Long: `
Create a file of --records records of --record-size bytes each, reserving
records*record-size contiguous data bytes. The reservation is permanent:
deleting records later empties the file but never returns its range to the
allocator.
`,
		Args: cobra.ExactArgs(1),
		Run:  i.runCreate,
	}
	create.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")
	create.Flags().IntVar(&i.recordSize, "record-size", 0, "bytes per record")
	create.Flags().IntVar(&i.records, "records", 0, "record capacity")

	appendCmd := &cobra.Command{
		Use:   "append <image> <record>...",
		Short: "append records to a file",
		Long: `
Append one record per argument at the file's write cursor. Records are taken
as literal bytes; prefix an argument with "hex:" to give hex digits instead.
Every record must be exactly record-size bytes.
`,
		Args: cobra.MinimumNArgs(2),
		Run:  i.runAppend,
	}
	appendCmd.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")

	overwrite := &cobra.Command{
		Use:   "overwrite <image> <record>...",
		Short: "delete all records, then append",
		Args:  cobra.MinimumNArgs(2),
		Run:   i.runOverwrite,
	}
	overwrite.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")

	read := &cobra.Command{
		Use:   "read <image>",
		Short: "read one record by index",
		Args:  cobra.ExactArgs(1),
		Run:   i.runRead,
	}
	read.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")
	read.Flags().IntVar(&i.index, "index", 0, "record index, oldest first")
	read.Flags().Var(&i.fmtRecord, "format", "record output format (hex, quoted, null, or a % spec)")

	scan := &cobra.Command{
		Use:   "scan <image>",
		Short: "read records oldest first",
		Args:  cobra.ExactArgs(1),
		Run:   i.runScan,
	}
	scan.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")
	scan.Flags().IntVar(&i.count, "count", 0, "max records to read; 0 means all")
	scan.Flags().Var(&i.fmtRecord, "format", "record output format (hex, quoted, null, or a % spec)")

	deleteCmd := &cobra.Command{
		Use:   "delete <image>",
		Short: "delete all records in a file",
		Args:  cobra.ExactArgs(1),
		Run:   i.runDelete,
	}
	deleteCmd.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")

	truncate := &cobra.Command{
		Use:   "truncate <image>",
		Short: "drop the oldest records of a file",
		Long: `
Drop the --n oldest records and shift the survivors to the start of the
file's range, preserving their order. Dropping at least as many records as
are written empties the file.
`,
		Args: cobra.ExactArgs(1),
		Run:  i.runTruncate,
	}
	truncate.Flags().IntVar(&i.fileID, "id", 0, "file ID, 0-255")
	truncate.Flags().IntVar(&i.count, "n", 0, "records to drop from the head")

	dump := &cobra.Command{
		Use:   "dump <image>",
		Short: "print an annotated dump of the on-medium structures",
		Long: `
Decode the global stats block and every file table slot, field by field. The
image does not need to carry a valid filesystem; corrupt or blank structures
are decoded as-is, which makes dump the tool of choice for post-mortems.
`,
		Args: cobra.ExactArgs(1),
		Run:  i.runDump,
	}
	dump.Flags().BoolVar(&i.withData, "data", false, "also hex dump the data region")

	i.Root.AddCommand(format, info, ls, create, appendCmd, overwrite, read, scan, deleteCmd, truncate, dump)
	return i
}

func (i *imageT) fatal(err error) {
	fmt.Fprintf(stderr, "%s\n", err)
	osExit(1)
}

func (i *imageT) opts() *eepromfs.Options {
	return &eepromfs.Options{
		FileTablePages: i.tablePages,
		Logger:         toolLogger{},
	}
}

// openMedium opens an existing image, deriving the page count from the file
// size so that only --page-size has to match the device.
func (i *imageT) openMedium(path string) (*medium.File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if i.pageSize <= 0 || fi.Size()%int64(i.pageSize) != 0 {
		return nil, errors.Newf("image %q is %d bytes, not a whole number of %d-byte pages",
			path, fi.Size(), i.pageSize)
	}
	g := medium.Geometry{PageSize: i.pageSize, Pages: int(fi.Size()) / i.pageSize}
	return medium.OpenFile(path, g)
}

func (i *imageT) openStore(path string) (*eepromfs.Store, *medium.File, bool) {
	m, err := i.openMedium(path)
	if err != nil {
		i.fatal(err)
		return nil, nil, false
	}
	s, err := eepromfs.Open(m, i.opts())
	if err != nil {
		_ = m.Close()
		i.fatal(err)
		return nil, nil, false
	}
	return s, m, true
}

func (i *imageT) id() (eepromfs.FileID, bool) {
	if i.fileID < 0 || i.fileID > 255 {
		i.fatal(errors.Newf("file ID %d outside [0, 255]", i.fileID))
		return 0, false
	}
	return eepromfs.FileID(i.fileID), true
}

// finish flushes the image and prints the file's post-command state.
func (i *imageT) finish(s *eepromfs.Store, m *medium.File, id eepromfs.FileID) {
	if err := m.Sync(); err != nil {
		i.fatal(err)
		return
	}
	fi, err := s.Lookup(id)
	if err != nil {
		i.fatal(err)
		return
	}
	fmt.Fprintf(stdout, "%s\n", fi)
}

func (i *imageT) runFormat(cmd *cobra.Command, args []string) {
	path := args[0]
	g := medium.Geometry{PageSize: i.pageSize, Pages: i.pages}
	var m *medium.File
	var err error
	if _, serr := os.Stat(path); os.IsNotExist(serr) {
		m, err = medium.CreateFile(path, g)
	} else {
		m, err = medium.OpenFile(path, g)
	}
	if err != nil {
		i.fatal(err)
		return
	}
	defer m.Close()
	if err := eepromfs.Format(m, i.opts()); err != nil {
		i.fatal(err)
		return
	}
	if err := m.Sync(); err != nil {
		i.fatal(err)
		return
	}
	s, err := eepromfs.Open(m, i.opts())
	if err != nil {
		i.fatal(err)
		return
	}
	fmt.Fprintf(stdout, "formatted %s: %s\n", path, s.Layout())
}

func (i *imageT) runInfo(cmd *cobra.Command, args []string) {
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	gs, err := s.Stats()
	if err != nil {
		i.fatal(err)
		return
	}
	files, err := s.FileCount()
	if err != nil {
		i.fatal(err)
		return
	}
	free, err := s.FreeSlots()
	if err != nil {
		i.fatal(err)
		return
	}
	g := m.Geometry()
	fmt.Fprintf(stdout, "%s: %d bytes, %d %d-byte pages\n", m.Path(), g.Size(), g.Pages, g.PageSize)
	fmt.Fprintf(stdout, "layout: %s\n", s.Layout())
	fmt.Fprintf(stdout, "stats: %s\n", gs)
	fmt.Fprintf(stdout, "files: %d live, %d free slots\n", files, free)
}

func (i *imageT) runLs(cmd *cobra.Command, args []string) {
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	infos, err := s.Files()
	if err != nil {
		i.fatal(err)
		return
	}
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"ID", "Record", "Written", "Capacity", "Range", "Cursor"})
	for _, fi := range infos {
		tbl.Append([]string{
			fi.ID.String(),
			fmt.Sprintf("%dB", fi.RecordSize),
			fmt.Sprint(fi.Written()),
			fmt.Sprint(fi.Capacity()),
			fmt.Sprintf("0x%04x-0x%04x", fi.Start, fi.End),
			fmt.Sprintf("0x%04x", fi.Next),
		})
	}
	tbl.Render()
}

func (i *imageT) runCreate(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	if err := s.Create(id, i.recordSize, i.records); err != nil {
		i.fatal(err)
		return
	}
	i.finish(s, m, id)
}

func (i *imageT) runAppend(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	for _, arg := range args[1:] {
		rec, err := parseRecord(arg)
		if err != nil {
			i.fatal(err)
			return
		}
		if err := s.Append(id, rec); err != nil {
			i.fatal(err)
			return
		}
	}
	i.finish(s, m, id)
}

func (i *imageT) runOverwrite(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	recs := make([][]byte, 0, len(args)-1)
	for _, arg := range args[1:] {
		rec, err := parseRecord(arg)
		if err != nil {
			i.fatal(err)
			return
		}
		recs = append(recs, rec)
	}
	if err := s.Overwrite(id, recs[0]); err != nil {
		i.fatal(err)
		return
	}
	for _, rec := range recs[1:] {
		if err := s.Append(id, rec); err != nil {
			i.fatal(err)
			return
		}
	}
	i.finish(s, m, id)
}

func (i *imageT) runRead(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	fi, err := s.Lookup(id)
	if err != nil {
		i.fatal(err)
		return
	}
	rec := make([]byte, fi.RecordSize)
	if err := s.Read(id, i.index, rec); err != nil {
		i.fatal(err)
		return
	}
	i.fmtRecord.fn(stdout, rec)
	fmt.Fprintln(stdout)
}

func (i *imageT) runScan(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	fi, err := s.Lookup(id)
	if err != nil {
		i.fatal(err)
		return
	}
	n := fi.Written()
	if i.count > 0 && i.count < n {
		n = i.count
	}
	rec := make([]byte, fi.RecordSize)
	for idx := 0; idx < n; idx++ {
		if err := s.Read(id, idx, rec); err != nil {
			i.fatal(err)
			return
		}
		fmt.Fprintf(stdout, "%d: ", idx)
		i.fmtRecord.fn(stdout, rec)
		fmt.Fprintln(stdout)
	}
}

func (i *imageT) runDelete(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	if err := s.DeleteAll(id); err != nil {
		i.fatal(err)
		return
	}
	i.finish(s, m, id)
}

func (i *imageT) runTruncate(cmd *cobra.Command, args []string) {
	id, ok := i.id()
	if !ok {
		return
	}
	s, m, ok := i.openStore(args[0])
	if !ok {
		return
	}
	defer m.Close()
	if err := s.TruncateHead(id, i.count); err != nil {
		i.fatal(err)
		return
	}
	i.finish(s, m, id)
}

func (i *imageT) runDump(cmd *cobra.Command, args []string) {
	m, err := i.openMedium(args[0])
	if err != nil {
		i.fatal(err)
		return
	}
	defer m.Close()
	if err := eepromfs.DescribeImage(stdout, m, i.opts()); err != nil {
		i.fatal(err)
		return
	}
	if i.withData {
		s, err := eepromfs.Open(m, i.opts())
		if err != nil {
			i.fatal(err)
			return
		}
		l := s.Layout()
		data := make([]byte, l.DataLen)
		if err := m.ReadAt(data, l.DataAddr); err != nil {
			i.fatal(err)
			return
		}
		fmt.Fprintf(stdout, "data region @ 0x%04x\n", l.DataAddr)
		binfmt.FHexDump(stdout, data, l.DataAddr, 16)
	}
}

// toolLogger keeps engine lifecycle chatter out of command output but
// surfaces errors, which in this tool almost always precede a non-zero exit.
type toolLogger struct{}

func (toolLogger) Infof(string, ...interface{}) {}

func (toolLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, format+"\n", args...)
}

func (toolLogger) Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, format+"\n", args...)
	osExit(1)
}
