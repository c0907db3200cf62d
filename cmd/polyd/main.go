// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command polyd is the multi-protocol routing daemon core: a single
// supervisor process hosting the northbound transaction engine and the
// IS-IS, OSPFv2, OSPFv3, LDP, and BGP protocol instances.
package main

import (
	"fmt"
	"os"

	"github.com/polyd/polyd/cmd/polyd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
