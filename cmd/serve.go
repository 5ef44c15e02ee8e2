// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose receiver metrics on a Prometheus endpoint",
	Long: `Decode the receiver stream and serve decode statistics and fix
state as Prometheus metrics on /metrics.

Listen address and log file come from the config file (serve section).
The packet log rotates so a receiver left running for months does not
fill the disk.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

var (
	metricPackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sextant_packets_total",
		Help: "decoded packets by protocol generation",
	}, []string{"generation"})

	metricFramingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sextant_framing_errors_total",
		Help: "byte stream framing errors",
	})

	metricValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sextant_validation_errors_total",
		Help: "packet validation errors by anomaly type",
	}, []string{"type"})

	metricFixMode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sextant_fix_mode",
		Help: "current fix mode: 0 unknown, 1 none, 2 2D, 3 3D",
	})

	metricSatsUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sextant_satellites_used",
		Help: "satellites in the current fix solution",
	})

	metricSatsVisible = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sextant_satellites_visible",
		Help: "satellites reported in the current tracking cycle",
	})

	metricPDOP = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sextant_pdop",
		Help: "position dilution of precision",
	})
)

func setupServeLogging(logFile string) error {
	if logFile == "" {
		return nil
	}
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    25, // MB
		MaxAge:     7,  // days
		MaxBackups: 5,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := setupServeLogging(cfg.Serve.LogFile); err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("Connection: %s", connInfo)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("Metrics on http://%s/metrics", cfg.Serve.Listen)
		if err := http.ListenAndServe(cfg.Serve.Listen, nil); err != nil {
			log.Fatalf("metrics listener: %v", err)
		}
	}()

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
			if err != nil {
				metricFramingErrors.Inc()
				log.Printf("Framing error: %v", err)
				continue
			}
			if packet == nil {
				continue
			}
			if packet.IsV1() {
				metricPackets.WithLabelValues("tsipv1").Inc()
			} else {
				metricPackets.WithLabelValues("legacy").Inc()
			}

			result := session.Parse(packet)
			for _, verr := range result.Errors {
				metricValidationErrors.WithLabelValues(verr.Type.String()).Inc()
				log.Printf("%s: %s", tsip.FormatPacketType(packet.ID, 0xff), verr.Message)
			}
			if result.Mask.Has(tsip.MaskReportFix) {
				metricFixMode.Set(float64(session.Fix.Mode))
				metricSatsUsed.Set(float64(len(session.SatsUsed)))
				metricSatsVisible.Set(float64(session.Skyview.Visible))
				metricPDOP.Set(session.Fix.PDOP)
			}
			if err := session.SendAll(conn, result.Commands); err != nil {
				log.Printf("Write error: %v", err)
			}
		}
	}
}
