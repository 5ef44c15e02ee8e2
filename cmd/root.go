// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Session behavior flags
	readOnly   bool
	passive    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sextant",
	Short: "Trimble TSIP Protocol Analyzer",
	Long: `Sextant - A CLI tool for monitoring and analyzing Trimble TSIP GPS receivers.

Speaks both legacy TSIP and TSIPv1 (RES720-era) framing, decodes navigation
and timing reports, validates packets, and can capture and replay raw
receiver sessions.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the SEXTANT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

--readonly never writes a byte to the receiver. --passive keeps decoding but
leaves the receiver's configuration alone.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags. The TSIP factory default is 9600 8-O-1.
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Session flags
	rootCmd.PersistentFlags().BoolVar(&readOnly, "readonly", false, "Never write to the receiver")
	rootCmd.PersistentFlags().BoolVar(&passive, "passive", false, "Decode only, leave receiver configuration alone")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Analyzer config file (YAML)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
