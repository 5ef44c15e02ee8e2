// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze malformed packets and errors",
	Long: `Track packet errors, malformed data, and anomalous values with statistics.

This command validates each packet and detects:
  - Framing desync and undersized packets
  - TSIPv1 length and checksum failures
  - Unknown packet types and subtypes
  - Anomalous values (DOPs outside the sane window, suspect GPS weeks,
    satellite indexes past receiver capacity)
  - Command rejects reported by the receiver

By default, only errors are displayed. Use --show-all to display valid
packets too. Statistics summaries print at configurable intervals and a
final summary prints on Ctrl+C.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all packets (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Sextant - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All packets\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	session := newSession(cfg)
	decoder := tsip.NewDecoder()
	stats := tsip.NewStatistics()

	// Sync tracking - ignore decode errors until first valid packet
	synchronized := false
	invalidBytesBeforeSync := 0
	skippedSeen := 0

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Channel for non-blocking reads
	dataCh := make(chan []byte, 10)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					close(dataCh)
					return
				}
				log.Printf("Read error: %v", err)
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			dataCh <- data
		}
	}()

	if err := session.Send(conn, session.InitQuery()); err != nil {
		log.Printf("Probe write error: %v", err)
	}

	for {
		select {
		case data, ok := <-dataCh:
			if !ok {
				fmt.Println("\nConnection closed")
				fmt.Print(stats.String())
				return nil
			}
			for _, b := range data {
				packet, decodeErr := decoder.DecodeByte(b)

				if decodeErr != nil {
					if synchronized {
						// We're synced, this is a real error
						stats.Update(nil, decodeErr, nil)
						printDecodeError(decodeErr)
					} else {
						// Not synced yet, just count invalid bytes
						invalidBytesBeforeSync++
					}
					continue
				}
				if packet == nil {
					continue
				}
				if !synchronized {
					// First packet! We're now synchronized
					synchronized = true
					if invalidBytesBeforeSync > 0 {
						fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", invalidBytesBeforeSync)
					} else {
						fmt.Printf("[SYNC] Synchronized\n\n")
					}
				}

				result := session.Parse(packet)
				stats.Update(packet, nil, result.Errors)
				if n := decoder.Skipped(); n > skippedSeen {
					stats.AddSkipped(n - skippedSeen)
					skippedSeen = n
				}

				if len(result.Errors) > 0 {
					printValidationErrors(packet, result.Errors)
				} else if showAll {
					fmt.Print(tsip.FormatPacket(packet))
				}
				if err := session.SendAll(conn, result.Commands); err != nil {
					log.Printf("Write error: %v", err)
				}
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()

		case <-sigCh:
			fmt.Println()
			fmt.Print(stats.String())
			return nil
		}
	}
}

// printDecodeError prints a decode error in highlighted format
func printDecodeError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mFRAMING ERROR:\033[0m %v\n\n", timestamp, err)
}

// printValidationErrors prints validation errors for a packet
func printValidationErrors(packet *tsip.Packet, errors []tsip.ValidationError) {
	timestamp := packet.Timestamp.Format("15:04:05.000")
	sub := uint8(0xff)
	if len(packet.Body) > 0 {
		sub = packet.Body[0]
	}
	name := tsip.FormatPacketType(packet.ID, sub)

	fmt.Printf("[%s] \033[1;33mVALIDATION:\033[0m %s (0x%02X)\n", timestamp, name, packet.ID)
	for i, err := range errors {
		switch err.Type {
		case tsip.ANOMALY_CHECKSUM, tsip.ANOMALY_LENGTH_MISMATCH, tsip.ANOMALY_SHORT_PACKET:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
		case tsip.ANOMALY_WEEK_SUSPECT, tsip.ANOMALY_INVALID_VALUE, tsip.ANOMALY_SAT_INDEX:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}
	fmt.Println()
}
