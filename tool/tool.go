// Copyright 2026 The ThingPilot Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package tool implements the offline eepromfs introspection tools. The
// tools operate on image files holding a byte-for-byte copy of a device's
// EEPROM contents.
package tool

import "github.com/spf13/cobra"

// T is the container for all of the introspection tools.
type T struct {
	// Commands is the list of the commands implemented by the tool.
	Commands []*cobra.Command

	image *imageT
}

// New creates a new instance of the tools.
func New() *T {
	t := &T{}
	t.image = newImage()
	t.Commands = append(t.Commands, t.image.Root)
	return t
}
