// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/spf13/cobra"
)

var configureBaud int

var configureCmd = &cobra.Command{
	Use:   "configure [generic|acutime|res360]",
	Short: "Send a receiver configuration profile",
	Long: `Send the command batch that puts the receiver into a known
reporting configuration.

Profiles:
  generic - io options for double-precision LLA plus ENU velocity,
            automatic fix mode. Safe on any legacy receiver.
  acutime - self-survey, PPS and packet broadcast setup for the
            Acutime Gold timing antenna.
  res360  - periodic message mask for Resolution SMTx hardware.

With --baud the port speed switch is sent after the profile; reconnect
at the new rate afterwards. Refused when --readonly is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().IntVar(&configureBaud, "set-baud", 0, "Also switch the receiver port to this rate")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	if readOnly {
		return fmt.Errorf("configure writes to the receiver, remove --readonly")
	}

	var batch []tsip.Command
	switch args[0] {
	case "generic":
		batch = tsip.ConfigureGeneric()
	case "acutime":
		batch = tsip.ConfigureAcutimeGold()
	case "res360":
		batch = tsip.ConfigureRES360(passive)
	default:
		return fmt.Errorf("unknown profile %q", args[0])
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	fmt.Printf("Connection: %s\n", connInfo)

	session := tsip.NewSession(tsip.SessionOptions{Passive: passive})
	if err := session.SendAll(conn, batch); err != nil {
		return err
	}
	for _, c := range batch {
		fmt.Printf("sent %s\n", c.Label)
	}

	if configureBaud > 0 {
		sw := tsip.SpeedSwitch(configureBaud, 'O', 1)
		if err := session.Send(conn, sw); err != nil {
			return err
		}
		fmt.Printf("sent %s, reconnect with -b %d\n", sw.Label, configureBaud)
	}
	return nil
}
