// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad
//
// Sextant - Trimble TSIP Protocol Analyzer
//
// A CLI tool for monitoring, decoding and exporting Trimble TSIP and
// TSIPv1 GPS receiver packets in human-readable form.

package main

import (
	"os"

	"github.com/Thermoquad/sextant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
