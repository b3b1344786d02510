// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var stdout = io.Writer(os.Stdout)
var stderr = io.Writer(os.Stderr)
var osExit = os.Exit

// parseRecord parses a record payload argument. The argument is taken as
// literal bytes unless it carries a "hex:" prefix, which decodes the
// remainder as hex digits, or a "raw:" prefix, which strips the prefix and
// keeps the rest verbatim (useful for payloads that begin with "hex:").
func parseRecord(arg string) ([]byte, error) {
	switch {
	case strings.HasPrefix(arg, "hex:"):
		b, err := hex.DecodeString(strings.TrimPrefix(arg, "hex:"))
		if err != nil {
			return nil, fmt.Errorf("invalid record %q: %v", arg, err)
		}
		return b, nil
	case strings.HasPrefix(arg, "raw:"):
		return []byte(strings.TrimPrefix(arg, "raw:")), nil
	default:
		return []byte(arg), nil
	}
}

// formatter wraps a record formatting function so that it can be used as a
// cobra flag. The spec is either one of the fixed formatters (hex, null,
// quoted) or a format string containing exactly one %-verb applied to the
// record bytes.
type formatter struct {
	spec string
	fn   func(w io.Writer, v []byte)
}

func (f *formatter) String() string {
	return f.spec
}

// Type implements the pflag.Value interface.
func (f *formatter) Type() string {
	return "record formatter"
}

// Set implements the pflag.Value interface.
func (f *formatter) Set(spec string) error {
	f.spec = spec
	switch spec {
	case "hex":
		f.fn = formatHex
	case "null":
		f.fn = formatNull
	case "quoted":
		f.fn = formatQuoted
	default:
		if strings.Count(spec, "%") != 1 {
			return fmt.Errorf("unknown formatter %q", spec)
		}
		f.fn = func(w io.Writer, v []byte) {
			fmt.Fprintf(w, spec, v)
		}
	}
	return nil
}

func (f *formatter) mustSet(spec string) {
	if err := f.Set(spec); err != nil {
		panic(err)
	}
}

func formatHex(w io.Writer, v []byte) {
	fmt.Fprintf(w, "[% x]", v)
}

func formatNull(io.Writer, []byte) {}

func formatQuoted(w io.Writer, v []byte) {
	q := strconv.AppendQuote(make([]byte, 0, len(v)), string(v))
	w.Write(q[1 : len(q)-1])
}
