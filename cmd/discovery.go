// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
	serial "go.bug.st/serial"
)

var (
	discoveryTimeout int
)

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Scan serial ports for TSIP receivers",
	Long: `Probe every serial port on the system for a TSIP receiver.

Each port is opened at 9600 8-O-1, sent a software version request, and
watched for a version reply. Ports that answer are reported with the
receiver's version string; ports carrying unrelated traffic or nothing
at all are skipped after the timeout.

Exit codes:
  0 - At least one receiver found
  1 - No receivers found
  2 - Port enumeration failed`,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	discoveryCmd.Flags().IntVar(&discoveryTimeout, "timeout", 3, "Timeout in seconds per port")
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Port enumeration failed: %v\n", err)
		os.Exit(2)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports on this system")
		os.Exit(1)
	}

	fmt.Printf("Sextant - Receiver Discovery\n")
	fmt.Printf("Scanning %d ports, %d second timeout each\n\n", len(ports), discoveryTimeout)

	found := 0
	for _, name := range ports {
		fmt.Printf("%-20s ", name)

		version, err := probePort(name)
		if err != nil {
			fmt.Printf("- (%v)\n", err)
			continue
		}
		if version == "" {
			fmt.Printf("- no answer\n")
			continue
		}
		fmt.Printf("TSIP receiver: %s\n", version)
		found++
	}

	fmt.Printf("\n%d receiver(s) found\n", found)
	if found == 0 {
		os.Exit(1)
	}
	return nil
}

// probePort sends one version request and waits for the reply. Empty
// version with nil error means the port opened but nothing answered.
func probePort(name string) (string, error) {
	conn, err := OpenSerialConnection(name, 9600)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	session := tsip.NewSession(tsip.SessionOptions{Passive: true})
	decoder := tsip.NewDecoder()

	if err := session.Send(conn, session.InitQuery()); err != nil {
		return "", err
	}

	resultChan := make(chan string, 1)
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			for i := 0; i < n; i++ {
				packet, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil || packet == nil {
					continue
				}
				if packet.ID != tsip.IDSoftwareVersion && packet.ID != tsip.IDv1Version {
					continue
				}
				session.Parse(packet)
				if session.Subtype != "" {
					resultChan <- session.Subtype
				} else {
					resultChan <- session.Subtype1
				}
				return
			}
		}
	}()

	select {
	case version := <-resultChan:
		return version, nil
	case <-time.After(time.Duration(discoveryTimeout) * time.Second):
		return "", nil
	}
}
