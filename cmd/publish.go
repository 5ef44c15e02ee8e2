// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"
)

var publishQuiet bool

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish fix reports to an MQTT broker",
	Long: `Decode the receiver stream and publish one JSON document per
completed fix cycle to an MQTT broker.

Broker address, topic and credentials come from the config file
(mqtt section). Satellite counts and DOPs ride along with the
position so downstream consumers need no protocol knowledge.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVarP(&publishQuiet, "quiet", "q", false, "Suppress per-fix console output")
	rootCmd.AddCommand(publishCmd)
}

// fixDocument is the published JSON shape. Zero-value fields marshal
// anyway so consumers see a stable schema.
type fixDocument struct {
	Time        string  `json:"time"`
	Mode        string  `json:"mode"`
	Status      string  `json:"status"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	AltHAE      float64 `json:"alt_hae"`
	AltMSL      float64 `json:"alt_msl"`
	Speed       float64 `json:"speed"`
	Track       float64 `json:"track"`
	Climb       float64 `json:"climb"`
	PDOP        float64 `json:"pdop"`
	HDOP        float64 `json:"hdop"`
	VDOP        float64 `json:"vdop"`
	SatsUsed    int     `json:"sats_used"`
	SatsVisible int     `json:"sats_visible"`
	Leap        int     `json:"leap"`
	Temperature float64 `json:"temperature,omitempty"`
}

func buildFixDocument(session *tsip.Session) fixDocument {
	fix := &session.Fix
	doc := fixDocument{
		Mode:        fixModeName(fix.Mode),
		Status:      fixStatusName(fix.Status),
		Lat:         fix.Lat,
		Lon:         fix.Lon,
		AltHAE:      fix.AltHAE,
		AltMSL:      fix.AltMSL,
		Speed:       fix.Speed,
		Track:       fix.Track,
		Climb:       fix.Climb,
		PDOP:        fix.PDOP,
		HDOP:        fix.HDOP,
		VDOP:        fix.VDOP,
		SatsUsed:    len(session.SatsUsed),
		SatsVisible: session.Skyview.Visible,
		Leap:        fix.Leap,
		Temperature: fix.Temperature,
	}
	if !fix.Time.IsZero() {
		doc.Time = fix.Time.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	fmt.Printf("Connected to MQTT broker %s, topic %s\n", cfg.MQTT.Broker, cfg.MQTT.Topic)

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	fmt.Printf("Connection: %s\n", connInfo)

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
				doc := buildFixDocument(session)
				payload, err := json.Marshal(doc)
				if err != nil {
					log.Printf("Marshal error: %v", err)
					continue
				}
				token := client.Publish(cfg.MQTT.Topic, 0, true, payload)
				token.Wait()
				if token.Error() != nil {
					log.Printf("Publish error: %v", token.Error())
				} else if !publishQuiet {
					fmt.Printf("published %s\n", payload)
				}
			}
			if err := session.SendAll(conn, result.Commands); err != nil {
				log.Printf("Write error: %v", err)
			}
		}
	}
}
