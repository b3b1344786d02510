// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package eepromfs

import (
	"sync/atomic"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/redact"
	"github.com/prometheus/client_golang/prometheus"
)

// MediumMetrics routes the latency of every raw medium access the store
// issues into prometheus histograms. Histograms left nil are skipped.
// Latencies are observed in nanoseconds.
type MediumMetrics struct {
	ReadLatency  prometheus.Histogram
	WriteLatency prometheus.Histogram
}

// Metrics is a point-in-time snapshot of the store's monotonic counters.
// Operation counters count completed operations; the medium counters count
// every access attempt, including those that failed.
type Metrics struct {
	Creates    uint64
	Appends    uint64
	Reads      uint64
	Overwrites uint64
	Deletes    uint64
	Truncates  uint64
	Lookups    uint64

	Medium struct {
		// Reads and Writes count medium accesses; ReadBytes and WriteBytes
		// the payload bytes they carried.
		Reads      uint64
		Writes     uint64
		ReadBytes  uint64
		WriteBytes uint64
		// SettleWaits counts the page-program settle delays slept during
		// bulk writes.
		SettleWaits uint64
	}
}

// String implements fmt.Stringer.
func (m Metrics) String() string {
	return redact.StringWithoutMarkers(m)
}

// SafeFormat implements redact.SafeFormatter.
func (m Metrics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("ops: %s creates, %s appends, %s reads, %s overwrites, %s deletes, %s truncates, %s lookups",
		crhumanize.Count(m.Creates, crhumanize.Compact),
		crhumanize.Count(m.Appends, crhumanize.Compact),
		crhumanize.Count(m.Reads, crhumanize.Compact),
		crhumanize.Count(m.Overwrites, crhumanize.Compact),
		crhumanize.Count(m.Deletes, crhumanize.Compact),
		crhumanize.Count(m.Truncates, crhumanize.Compact),
		crhumanize.Count(m.Lookups, crhumanize.Compact))
	w.Printf("; medium: %s reads (%s), %s writes (%s), %s settle waits",
		crhumanize.Count(m.Medium.Reads, crhumanize.Compact),
		crhumanize.Bytes(m.Medium.ReadBytes, crhumanize.Compact, crhumanize.OmitI),
		crhumanize.Count(m.Medium.Writes, crhumanize.Compact),
		crhumanize.Bytes(m.Medium.WriteBytes, crhumanize.Compact, crhumanize.OmitI),
		crhumanize.Count(m.Medium.SettleWaits, crhumanize.Compact))
}

type storeMetrics struct {
	creates    atomic.Uint64
	appends    atomic.Uint64
	reads      atomic.Uint64
	overwrites atomic.Uint64
	deletes    atomic.Uint64
	truncates  atomic.Uint64
	lookups    atomic.Uint64

	mediumReads      atomic.Uint64
	mediumWrites     atomic.Uint64
	mediumReadBytes  atomic.Uint64
	mediumWriteBytes atomic.Uint64
	settleWaits      atomic.Uint64
}

// Metrics returns a snapshot of the store's counters.
func (s *Store) Metrics() Metrics {
	var m Metrics
	m.Creates = s.metrics.creates.Load()
	m.Appends = s.metrics.appends.Load()
	m.Reads = s.metrics.reads.Load()
	m.Overwrites = s.metrics.overwrites.Load()
	m.Deletes = s.metrics.deletes.Load()
	m.Truncates = s.metrics.truncates.Load()
	m.Lookups = s.metrics.lookups.Load()
	m.Medium.Reads = s.metrics.mediumReads.Load()
	m.Medium.Writes = s.metrics.mediumWrites.Load()
	m.Medium.ReadBytes = s.metrics.mediumReadBytes.Load()
	m.Medium.WriteBytes = s.metrics.mediumWriteBytes.Load()
	m.Medium.SettleWaits = s.metrics.settleWaits.Load()
	return m
}

// mediumRead and mediumWrite wrap the raw medium calls with the counters and
// latency histograms. All store I/O funnels through them.

func (s *Store) mediumRead(p []byte, addr int) error {
	s.metrics.mediumReads.Add(1)
	s.metrics.mediumReadBytes.Add(uint64(len(p)))
	start := crtime.NowMono()
	err := s.m.ReadAt(p, addr)
	if h := s.opts.MediumMetrics.ReadLatency; h != nil {
		h.Observe(float64(start.Elapsed()))
	}
	return err
}

func (s *Store) mediumWrite(p []byte, addr int) error {
	s.metrics.mediumWrites.Add(1)
	s.metrics.mediumWriteBytes.Add(uint64(len(p)))
	start := crtime.NowMono()
	err := s.m.WriteAt(p, addr)
	if h := s.opts.MediumMetrics.WriteLatency; h != nil {
		h.Observe(float64(start.Elapsed()))
	}
	return err
}
