// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
)

var (
	probeTimeout int
	probeCount   int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the receiver link by requesting its version",
	Long: `Send version requests to the receiver and wait for the reply,
measuring the round trip.

TSIP receivers answer the software version request immediately without
touching their navigation state, so this works mid-fix. TSIPv1-only
hardware answers the same request with its x90 version report.

This is useful for verifying:
  - Serial port or WebSocket connection is established
  - HTTP Basic authentication works (WebSocket)
  - The receiver speaks TSIP and is processing commands
  - Bidirectional packet flow works

Exit codes:
  0 - All probes answered
  1 - One or more probes timed out
  2 - Connection error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 5, "Timeout in seconds for each probe")
	probeCmd.Flags().IntVar(&probeCount, "count", 3, "Number of probes to send")
}

func runProbe(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Sextant - Receiver Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per probe\n", probeTimeout)
	fmt.Printf("Count: %d probes\n\n", probeCount)

	session := tsip.NewSession(tsip.SessionOptions{Passive: true})
	decoder := tsip.NewDecoder()
	successCount := 0
	failCount := 0

	for i := 1; i <= probeCount; i++ {
		fmt.Printf("Probe %d/%d: ", i, probeCount)

		startTime := time.Now()
		if err := session.Send(conn, session.InitQuery()); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		// Wait for the version report
		responseChan := make(chan *tsip.Packet, 1)
		errChan := make(chan error, 1)

		go func() {
			buf := make([]byte, 128)
			for {
				n, err := conn.Read(buf)
				if err != nil {
					errChan <- err
					return
				}

				for j := 0; j < n; j++ {
					packet, decodeErr := decoder.DecodeByte(buf[j])
					if decodeErr != nil {
						// Ignore decode errors
						continue
					}
					if packet != nil {
						// Version replies only; navigation traffic keeps flowing
						if packet.ID == tsip.IDSoftwareVersion || packet.ID == tsip.IDv1Version {
							responseChan <- packet
							return
						}
					}
				}
			}
		}()

		select {
		case packet := <-responseChan:
			rtt := time.Since(startTime)
			session.Parse(packet)
			version := session.Subtype
			if version == "" {
				version = session.Subtype1
			}
			fmt.Printf("version reply %q, rtt=%v\n", version, rtt.Round(time.Millisecond))
			successCount++

		case err := <-errChan:
			fmt.Printf("READ FAILED: %v\n", err)
			failCount++

		case <-time.After(time.Duration(probeTimeout) * time.Second):
			fmt.Printf("TIMEOUT (no response in %ds)\n", probeTimeout)
			failCount++
		}

		// Small delay between probes
		if i < probeCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	fmt.Printf("\n--- Probe statistics ---\n")
	fmt.Printf("%d probes sent, %d responses received, %.0f%% loss\n",
		probeCount, successCount, float64(failCount)/float64(probeCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
