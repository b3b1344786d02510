// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/thingpilot/eepromfs/tool"
)

var (
	benchPageSize   int
	benchPages      int
	benchTablePages int
	benchRecordSize int
	benchSettle     time.Duration
	duration        time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "eepromfs [command] (flags)",
	Short: "eepromfs introspection and benchmarking tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false

	t := tool.New()
	rootCmd.AddCommand(t.Commands...)

	rootCmd.AddCommand(benchCmd)
	benchCmd.AddCommand(benchAppendCmd, benchReadCmd)

	for _, cmd := range []*cobra.Command{benchAppendCmd, benchReadCmd} {
		cmd.Flags().IntVar(
			&benchPageSize, "page-size", 256, "physical page size of the simulated device in bytes")
		cmd.Flags().IntVar(
			&benchPages, "pages", 256, "number of pages on the simulated device")
		cmd.Flags().IntVar(
			&benchTablePages, "table-pages", 1, "pages reserved for the file table")
		cmd.Flags().IntVar(
			&benchRecordSize, "record-size", 16, "bytes per record")
		cmd.Flags().DurationVar(
			&benchSettle, "settle", 0, "write-settle delay imposed on every page write")
		cmd.Flags().DurationVarP(
			&duration, "duration", "d", 10*time.Second, "the duration to run")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
