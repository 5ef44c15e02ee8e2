// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"

	"github.com/Thermoquad/sextant/pkg/tsip"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Full-screen receiver monitor",
	Long: `Terminal dashboard for a live receiver session.

Panels show the current fix snapshot, the skyview table, receiver identity
and statistics, plus a bounded event log of validation errors and command
traffic. Rates refresh once per second.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// packetMsg carries one parsed packet and its session result into the TUI
type packetMsg struct {
	packet *tsip.Packet
	result tsip.Result
}

// framingErrMsg carries a framing error into the TUI
type framingErrMsg struct {
	err error
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	session := newSession(cfg)
	decoder := tsip.NewDecoder()

	m := initialMonitorModel(session, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Reader goroutine: decode, parse, forward to the TUI, write back
	go func() {
		if err := session.Send(conn, session.InitQuery()); err != nil {
			log.Printf("Probe write error: %v", err)
		}
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					p.Send(framingErrMsg{err: err})
					return
				}
				continue
			}
			for i := 0; i < n; i++ {
				packet, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					p.Send(framingErrMsg{err: decodeErr})
					continue
				}
				if packet == nil {
					continue
				}
				result := session.Parse(packet)
				p.Send(packetMsg{packet: packet, result: result})
				if err := session.SendAll(conn, result.Commands); err != nil {
					p.Send(framingErrMsg{err: err})
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
