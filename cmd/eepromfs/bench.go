// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/errors"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/thingpilot/eepromfs"
	"github.com/thingpilot/eepromfs/medium"
)

const (
	minLatency = 100 * time.Nanosecond
	maxLatency = 10 * time.Second
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run benchmarks against a simulated device",
	Long: `
Benchmarks run against an in-memory device image, so they measure engine
overhead rather than bus timing. --settle imposes a per-page-write settle
delay to approximate a real EEPROM's write cycle.
`,
}

var benchAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "run the append benchmark",
	Long: `
Append fixed-length records to a file spanning the whole data region,
deleting all records each time the file fills.
`,
	Run: runBenchAppend,
}

var benchReadCmd = &cobra.Command{
	Use:   "read",
	Short: "run the random point-read benchmark",
	Run:   runBenchRead,
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
}

func clampLatency(d time.Duration) time.Duration {
	if d < minLatency {
		return minLatency
	}
	if d > maxLatency {
		return maxLatency
	}
	return d
}

// latencyHistogram hands out per-tick histograms. The worker records while
// the reporting loop swaps, so access is locked.
type latencyHistogram struct {
	mu  sync.Mutex
	cur *hdrhistogram.Histogram
}

func (h *latencyHistogram) record(d time.Duration) {
	h.mu.Lock()
	_ = h.cur.RecordValue(clampLatency(d).Nanoseconds())
	h.mu.Unlock()
}

func (h *latencyHistogram) tick() *hdrhistogram.Histogram {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.cur
	h.cur = newHistogram()
	return out
}

// benchStore formats an in-memory device and creates file 1 spanning the
// whole data region, returning the store and the file's record capacity.
func benchStore() (*eepromfs.Store, int) {
	g := medium.Geometry{
		PageSize:    benchPageSize,
		Pages:       benchPages,
		WriteSettle: benchSettle,
	}
	m := medium.NewMem(g)
	opts := &eepromfs.Options{FileTablePages: benchTablePages}
	if err := eepromfs.Format(m, opts); err != nil {
		log.Fatal(err)
	}
	s, err := eepromfs.Open(m, opts)
	if err != nil {
		log.Fatal(err)
	}
	records := s.Layout().DataLen / benchRecordSize
	if records == 0 {
		log.Fatalf("%d-byte records exceed the %d-byte data region",
			benchRecordSize, s.Layout().DataLen)
	}
	if err := s.Create(1, benchRecordSize, records); err != nil {
		log.Fatal(err)
	}
	return s, records
}

// runBench drives op in a worker goroutine for the configured duration,
// printing a latency line per second and a cumulative summary with a
// throughput graph at the end. The store is single-owner, so the worker is
// the only goroutine touching it.
func runBench(op func() error) {
	var lat latencyHistogram
	lat.cur = newHistogram()
	cumulative := newHistogram()

	stop := make(chan struct{})
	workerDone := make(chan error, 1)
	go func() {
		for {
			select {
			case <-stop:
				workerDone <- nil
				return
			default:
			}
			start := time.Now()
			if err := op(); err != nil {
				workerDone <- err
				return
			}
			lat.record(time.Since(start))
		}
	}()

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	deadline := time.After(duration)

	start := time.Now()
	prevTick := start
	var throughput []float64
	var workerErr error
	workerExited := false
	for i, quit := 0, false; !quit; {
		select {
		case <-ticker.C:
			h := lat.tick()
			cumulative.Merge(h)
			now := time.Now()
			rate := float64(h.TotalCount()) / now.Sub(prevTick).Seconds()
			prevTick = now
			throughput = append(throughput, rate)
			if i%20 == 0 {
				fmt.Println("_elapsed____ops/sec__p50(ms)__p95(ms)__p99(ms)_pMax(ms)")
			}
			i++
			fmt.Printf("%8s %10.1f %8.3f %8.3f %8.3f %8.3f\n",
				time.Duration(now.Sub(start).Seconds()+0.5)*time.Second,
				rate,
				time.Duration(h.ValueAtQuantile(50)).Seconds()*1000,
				time.Duration(h.ValueAtQuantile(95)).Seconds()*1000,
				time.Duration(h.ValueAtQuantile(99)).Seconds()*1000,
				time.Duration(h.ValueAtQuantile(100)).Seconds()*1000)
		case <-deadline:
			quit = true
		case <-interrupted:
			quit = true
		case workerErr = <-workerDone:
			workerExited = true
			quit = true
		}
	}
	close(stop)
	if !workerExited {
		workerErr = <-workerDone
	}
	if workerErr != nil {
		log.Fatal(workerErr)
	}

	cumulative.Merge(lat.tick())
	elapsed := time.Since(start)
	fmt.Println("\n_elapsed_____ops(total)___ops/sec(cum)__avg(ms)__p50(ms)__p95(ms)__p99(ms)_pMax(ms)")
	fmt.Printf("%7.1fs %14d %14.1f %8.3f %8.3f %8.3f %8.3f %8.3f\n",
		elapsed.Seconds(), cumulative.TotalCount(),
		float64(cumulative.TotalCount())/elapsed.Seconds(),
		time.Duration(cumulative.Mean()).Seconds()*1000,
		time.Duration(cumulative.ValueAtQuantile(50)).Seconds()*1000,
		time.Duration(cumulative.ValueAtQuantile(95)).Seconds()*1000,
		time.Duration(cumulative.ValueAtQuantile(99)).Seconds()*1000,
		time.Duration(cumulative.ValueAtQuantile(100)).Seconds()*1000)

	if len(throughput) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(throughput,
			asciigraph.Height(10), asciigraph.Caption("ops/sec per tick")))
	}
}

func runBenchAppend(cmd *cobra.Command, args []string) {
	s, records := benchStore()
	fmt.Printf("append: %d pages of %d bytes, %d records of %d bytes, settle %s\n",
		benchPages, benchPageSize, records, benchRecordSize, benchSettle)

	rng := rand.New(rand.NewPCG(0, uint64(time.Now().UnixNano())))
	rec := make([]byte, benchRecordSize)
	for i := range rec {
		rec[i] = byte(rng.IntN(256))
	}
	runBench(func() error {
		if err := s.Append(1, rec); err != nil {
			if errors.Is(err, eepromfs.ErrFileFull) {
				return s.DeleteAll(1)
			}
			return err
		}
		return nil
	})
}

func runBenchRead(cmd *cobra.Command, args []string) {
	s, records := benchStore()
	fmt.Printf("read: %d pages of %d bytes, %d records of %d bytes, settle %s\n",
		benchPages, benchPageSize, records, benchRecordSize, benchSettle)

	rng := rand.New(rand.NewPCG(0, uint64(time.Now().UnixNano())))
	rec := make([]byte, benchRecordSize)
	for i := range rec {
		rec[i] = byte(rng.IntN(256))
	}
	for i := 0; i < records; i++ {
		if err := s.Append(1, rec); err != nil {
			log.Fatal(err)
		}
	}
	runBench(func() error {
		return s.Read(1, rng.IntN(records), rec)
	})
}
