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

var wsTestCmd = &cobra.Command{
	Use:   "ws_test",
	Short: "Test connection stability without configuring the receiver",
	Long: `Listen on the connection and report link quality.

Nothing is written to the receiver. Incoming bytes run through the TSIP
framer so the report separates well-framed packets from line noise, which
is the quickest way to tell a flaky WebSocket bridge from a bad baud rate.

Exit codes:
  0 - Test completed normally
  1 - Test failed
  2 - Connection error`,
	RunE: runWsTest,
}

var wsTestDuration int

func init() {
	rootCmd.AddCommand(wsTestCmd)
	wsTestCmd.Flags().IntVar(&wsTestDuration, "duration", 30, "Test duration in seconds")
}

func runWsTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Connection Stability Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %d seconds\n\n", wsTestDuration)

	readChan := make(chan []byte, 100)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				readChan <- data
			}
		}
	}()

	decoder := tsip.NewDecoder()
	start := time.Now()
	endTime := start.Add(time.Duration(wsTestDuration) * time.Second)
	bytesReceived := 0
	framesDecoded := 0
	framingErrors := 0
	lastData := start

	report := func(verdict string) {
		fmt.Printf("\n--- Test Results ---\n")
		fmt.Printf("Duration:        %v\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("Bytes received:  %d\n", bytesReceived)
		fmt.Printf("Frames decoded:  %d\n", framesDecoded)
		fmt.Printf("Framing errors:  %d\n", framingErrors)
		fmt.Printf("Bytes skipped:   %d\n", decoder.Skipped())
		fmt.Printf("Result: %s\n", verdict)
	}

	fmt.Printf("Listening...\n\n")
	for time.Now().Before(endTime) {
		select {
		case data := <-readChan:
			bytesReceived += len(data)
			lastData = time.Now()
			for _, b := range data {
				pkt, decodeErr := decoder.DecodeByte(b)
				if decodeErr != nil {
					framingErrors++
					fmt.Printf("[%s] %v\n", time.Now().Format("15:04:05.000"), decodeErr)
				}
				if pkt != nil {
					framesDecoded++
					fmt.Printf("[%s] x%02x packet, %d byte body\n",
						time.Now().Format("15:04:05.000"), pkt.ID, len(pkt.Body))
				}
			}

		case err := <-errChan:
			fmt.Printf("\n[%s] Connection error: %v\n",
				time.Now().Format("15:04:05.000"), err)
			report("FAILED (connection error)")
			os.Exit(1)

		case <-time.After(1 * time.Second):
			remaining := time.Until(endTime).Seconds()
			fmt.Printf("[%s] Connected, silent for %v (%.0fs remaining)\n",
				time.Now().Format("15:04:05.000"),
				time.Since(lastData).Round(time.Second), remaining)
		}
	}

	if framesDecoded == 0 && bytesReceived > 0 {
		report("FAILED (bytes but no TSIP frames, check the baud rate)")
		os.Exit(1)
	}
	report("PASSED (connection stable)")
	return nil
}
