// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
)

var captureOutPath string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record the raw receiver stream to a CBOR journal",
	Long: `Record every frame crossing the connection into a CBOR capture file.

Frames are stored raw, stuffing and all, with direction and timestamp, so a
later replay exercises the decoder exactly as the live receiver did. The
session still runs during capture, so outbound polls and configuration are
recorded too.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOutPath, "output", "o", "capture.cbor", "Capture file path")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	out, err := os.Create(captureOutPath)
	if err != nil {
		return fmt.Errorf("failed to create capture file: %w", err)
	}
	defer out.Close()

	fmt.Printf("Sextant - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Writing: %s\n", captureOutPath)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	session := newSession(cfg)
	decoder := tsip.NewDecoder()
	writer := tsip.NewCaptureWriter(out)

	frames := 0
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	dataCh := make(chan []byte, 16)
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
				fmt.Printf("\nConnection closed, %d frames captured\n", frames)
				return nil
			}
			if err := writer.Record(tsip.DirRx, data); err != nil {
				return err
			}
			frames++

			// Keep the session alive so the receiver keeps talking
			for _, b := range data {
				packet, err := decoder.DecodeByte(b)
				if err != nil || packet == nil {
					continue
				}
				result := session.Parse(packet)
				for _, c := range result.Commands {
					frame, err := tsip.FrameCommand(c.Body)
					if err != nil {
						continue
					}
					if err := writer.Record(tsip.DirTx, frame); err != nil {
						return err
					}
				}
				if err := session.SendAll(conn, result.Commands); err != nil {
					log.Printf("Write error: %v", err)
				}
			}

		case <-sigCh:
			fmt.Printf("\n%d frames captured to %s\n", frames, captureOutPath)
			return nil
		}
	}
}
