// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs_test

import (
	"fmt"
	"log"

	"github.com/thingpilot/eepromfs"
	"github.com/thingpilot/eepromfs/medium"
)

func Example() {
	// A 1 KiB EEPROM with 64-byte pages, simulated in memory.
	m := medium.NewMem(medium.Geometry{PageSize: 64, Pages: 16})
	opts := &eepromfs.Options{}
	if err := eepromfs.Format(m, opts); err != nil {
		log.Fatal(err)
	}
	s, err := eepromfs.Open(m, opts)
	if err != nil {
		log.Fatal(err)
	}

	// A ring of three 4-byte temperature samples.
	if err := s.Create(1, 4, 3); err != nil {
		log.Fatal(err)
	}
	for _, sample := range []string{"t=22", "t=23", "t=24"} {
		if err := s.Append(1, []byte(sample)); err != nil {
			log.Fatal(err)
		}
	}
	// Drop the oldest sample to make room for the next one.
	if err := s.TruncateHead(1, 1); err != nil {
		log.Fatal(err)
	}

	fi, err := s.Lookup(1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(fi)
	buf := make([]byte, fi.RecordSize)
	for i := 0; i < fi.Written(); i++ {
		if err := s.Read(1, i, buf); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s\n", buf)
	}
	// Output:
	// file-001: 4-byte records, 2/3 written, range [0x00c0, 0x00cb], cursor 0x00c8
	// t=23
	// t=24
}
