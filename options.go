// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/thingpilot/eepromfs/medium"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs.
var DefaultLogger defaultLogger

type defaultLogger struct{}

var _ Logger = DefaultLogger

// Infof implements the Logger.Infof interface.
func (defaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Errorf implements the Logger.Errorf interface.
func (defaultLogger) Errorf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (defaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Options holds the engine configuration that is independent of the medium
// itself. The zero value, after EnsureDefaults, describes a store with a
// two-page file table.
type Options struct {
	// FileTablePages is the number of pages, directly after the global stats
	// page, reserved for the file table. Together with the page size it bounds
	// the number of files the store can hold. It is a formatting parameter:
	// opening a medium with a different value than it was formatted with reads
	// descriptors from the wrong addresses.
	//
	// The default is 2.
	FileTablePages int

	// Logger is used for store lifecycle messages: format completion, open
	// summaries and create rollbacks. Record operations never log.
	//
	// The default logger uses the log package.
	Logger Logger

	// MediumMetrics, if set, receives the latency of every medium access the
	// store issues.
	MediumMetrics MediumMetrics

	// sleep pauses the calling goroutine for the medium's write-settle delay
	// during bulk page writes. Overridden in tests to avoid real sleeps.
	sleep func(time.Duration)
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified.
func (o *Options) EnsureDefaults() {
	if o.FileTablePages <= 0 {
		o.FileTablePages = 2
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger
	}
	if o.sleep == nil {
		o.sleep = time.Sleep
	}
}

// Clone creates a shallow copy of the supplied options, returning a new
// Options object with the same values. Clone of a nil receiver returns fresh
// options.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	n := *o
	return &n
}

// Validate verifies that the options are compatible with the geometry of the
// medium the store is to manage.
func (o *Options) Validate(g medium.Geometry) error {
	if g.PageSize < 16 || g.PageSize&(g.PageSize-1) != 0 {
		return errors.Newf("eepromfs: page size %d is not a power of two >= 16", g.PageSize)
	}
	if g.Size() > maxMediumSize {
		return errors.Wrapf(ErrMediumTooLarge, "%d-byte medium", g.Size())
	}
	// One page of global stats, the file table, and at least one data page.
	if g.Pages < 3 {
		return errors.Newf("eepromfs: medium has %d pages, need at least 3", g.Pages)
	}
	if o.FileTablePages < 1 || o.FileTablePages > g.Pages-2 {
		return errors.Newf("eepromfs: file table of %d pages does not fit a %d-page medium",
			o.FileTablePages, g.Pages)
	}
	return nil
}
