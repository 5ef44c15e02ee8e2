// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
)

var (
	replayFixesOnly bool
	replayStats     bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture-file>",
	Short: "Replay a CBOR capture through the decoder",
	Long: `Feed a previously captured session back through the decoder and session.

Output matches what watch would have shown live. Replay never opens a port
and never writes anywhere; the session runs read-only and the poll scheduler
works off receiver time inside the capture, so replays behave the same no
matter when they run.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayFixesOnly, "fixes", false, "Print normalized fixes instead of packets")
	replayCmd.Flags().BoolVar(&replayStats, "stats", true, "Print statistics at end of replay")
}

func runReplay(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer in.Close()

	// Replay is always read-only regardless of flags
	session := tsip.NewSession(tsip.SessionOptions{ReadOnly: true, Passive: passive})
	decoder := tsip.NewDecoder()
	stats := tsip.NewStatistics()
	reader := tsip.NewCaptureReader(in)

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if rec.D != tsip.DirRx {
			// outbound frames are in the journal for completeness only
			continue
		}
		for _, b := range rec.B {
			packet, decodeErr := decoder.DecodeByte(b)
			if decodeErr != nil {
				stats.Update(nil, decodeErr, nil)
				if !replayFixesOnly {
					fmt.Printf("[ERROR] %v\n", decodeErr)
				}
				continue
			}
			if packet == nil {
				continue
			}
			// Use the capture timestamp, not replay wall clock
			packet.Timestamp = rec.T

			result := session.Parse(packet)
			stats.Update(packet, nil, result.Errors)

			if replayFixesOnly {
				if result.Mask.Has(tsip.MaskReportFix) {
					fmt.Printf("%s used=%d visible=%d\n",
						tsip.FormatFix(&session.Fix),
						len(session.SatsUsed), session.Skyview.Visible)
				}
			} else {
				fmt.Print(tsip.FormatPacket(packet))
				for _, verr := range result.Errors {
					fmt.Printf("  [WARN] %v\n", &verr)
				}
			}
		}
	}

	if replayStats {
		fmt.Println()
		fmt.Print(stats.String())
	}
	return nil
}
