// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	"github.com/Thermoquad/sextant/pkg/tsip"
	nmea "github.com/adrianmo/go-nmea"
	"github.com/spf13/cobra"
)

var nmeaRevert bool

var nmeaCmd = &cobra.Command{
	Use:   "nmea",
	Short: "Switch the receiver to NMEA output and display sentences",
	Long: `Send the port reconfiguration that flips the receiver's output
protocol to NMEA, then parse and display the sentences as they arrive.

The receiver's input side stays TSIP, so --revert sends the port switch
back to TSIP output at 9600 8-O-1 and exits. Note that the NMEA side
runs at 4800 bps; reconnect with -b 4800 after switching.`,
	RunE: runNMEA,
}

func init() {
	nmeaCmd.Flags().BoolVar(&nmeaRevert, "revert", false, "Switch the receiver back to TSIP output and exit")
	rootCmd.AddCommand(nmeaCmd)
}

func runNMEA(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	fmt.Printf("Connection: %s\n", connInfo)

	session := newSession(cfg)

	if nmeaRevert {
		if err := session.Send(conn, tsip.TSIPMode()); err != nil {
			return err
		}
		fmt.Println("Sent TSIP revert, receiver back to 9600 8-O-1")
		return nil
	}

	if err := session.SendAll(conn, tsip.NMEAMode()); err != nil {
		return err
	}
	fmt.Println("Sent NMEA switch, waiting for sentences...")

	scanner := bufio.NewScanner(bufio.NewReader(conn))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// binary leftovers from the TSIP side show up until the
			// port switch lands
			continue
		}

		switch s := sentence.(type) {
		case nmea.GGA:
			fmt.Printf("GGA %s lat=%.6f lon=%.6f alt=%.1f sats=%d hdop=%.1f\n",
				s.Time, s.Latitude, s.Longitude, s.Altitude, s.NumSatellites, s.HDOP)
		case nmea.GSA:
			fmt.Printf("GSA mode=%s fix=%s pdop=%.1f hdop=%.1f vdop=%.1f sv=%v\n",
				s.Mode, s.FixType, s.PDOP, s.HDOP, s.VDOP, s.SV)
		case nmea.GSV:
			fmt.Printf("GSV msg %d/%d in view %d\n",
				s.MessageNumber, s.TotalMessages, s.NumberSVsInView)
		default:
			fmt.Println(line)
		}
	}
	if err := scanner.Err(); err != nil {
		if err == ErrConnectionClosed {
			log.Printf("Connection closed")
			return nil
		}
		return err
	}
	return nil
}
