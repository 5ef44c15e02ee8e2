// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
)

var sessionLogShowSats bool

var sessionLogCmd = &cobra.Command{
	Use:   "session_log",
	Short: "Log normalized fix reports",
	Long: `Decode the receiver stream and print one line per completed fix cycle.

Instead of raw packets this shows the normalized navigation solution: time,
position, altitude, fix mode and status, DOPs and satellite counts. A line
appears whenever the receiver finishes a report cycle, regardless of which
packet mix the model emits.`,
	RunE: runSessionLog,
}

func init() {
	rootCmd.AddCommand(sessionLogCmd)
	sessionLogCmd.Flags().BoolVar(&sessionLogShowSats, "sats", false, "Also print the skyview after each fix")
}

func runSessionLog(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Sextant - Session Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	session := newSession(cfg)
	decoder := tsip.NewDecoder()

	if err := session.Send(conn, session.InitQuery()); err != nil {
		log.Printf("Probe write error: %v", err)
	}

	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		for i := 0; i < n; i++ {
			packet, err := decoder.DecodeByte(buf[i])
			if err != nil || packet == nil {
				continue
			}
			result := session.Parse(packet)
			if result.Mask.Has(tsip.MaskReportFix) {
				printFixLine(session)
				if sessionLogShowSats {
					fmt.Print(tsip.FormatSkyview(&session.Skyview))
				}
			}
			if err := session.SendAll(conn, result.Commands); err != nil {
				log.Printf("Write error: %v", err)
			}
		}
	}
}

func printFixLine(session *tsip.Session) {
	stamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] %s used=%d visible=%d\n",
		stamp, tsip.FormatFix(&session.Fix),
		len(session.SatsUsed), session.Skyview.Visible)
}
