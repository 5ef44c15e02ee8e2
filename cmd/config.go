// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/sextant/pkg/tsip"
	"gopkg.in/yaml.v3"
)

// AnalyzerConfig carries the tunables that are policy rather than
// protocol: poll intervals, publisher and server settings. Everything has
// a working default; the file is optional.
type AnalyzerConfig struct {
	Poll struct {
		TimeSeconds    int `yaml:"time_seconds"`
		FixModeSeconds int `yaml:"fix_mode_seconds"`
		TrackSeconds   int `yaml:"track_seconds"`
		HealthSeconds  int `yaml:"health_seconds"`
		SysMsgSeconds  int `yaml:"sysmsg_seconds"`
		CompactSeconds int `yaml:"compact_seconds"`
	} `yaml:"poll"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		Topic    string `yaml:"topic"`
		ClientID string `yaml:"client_id"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"mqtt"`

	Serve struct {
		Listen  string `yaml:"listen"`
		LogFile string `yaml:"log_file"`
	} `yaml:"serve"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *AnalyzerConfig {
	cfg := &AnalyzerConfig{}
	cfg.MQTT.Topic = "sextant/fix"
	cfg.MQTT.ClientID = "sextant"
	cfg.Serve.Listen = ":9216"
	return cfg
}

// LoadConfig reads the YAML config at path, or returns defaults when path
// is empty
func LoadConfig(path string) (*AnalyzerConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// PollPolicy converts the config's poll section into session policy,
// keeping defaults for unset fields
func (c *AnalyzerConfig) PollPolicy() tsip.PollPolicy {
	p := tsip.DefaultPollPolicy()
	if c.Poll.TimeSeconds > 0 {
		p.TimeInterval = time.Duration(c.Poll.TimeSeconds) * time.Second
	}
	if c.Poll.FixModeSeconds > 0 {
		p.FixModeInterval = time.Duration(c.Poll.FixModeSeconds) * time.Second
	}
	if c.Poll.TrackSeconds > 0 {
		p.TrackInterval = time.Duration(c.Poll.TrackSeconds) * time.Second
	}
	if c.Poll.HealthSeconds > 0 {
		p.HealthInterval = time.Duration(c.Poll.HealthSeconds) * time.Second
	}
	if c.Poll.SysMsgSeconds > 0 {
		p.SysMsgInterval = time.Duration(c.Poll.SysMsgSeconds) * time.Second
	}
	if c.Poll.CompactSeconds > 0 {
		p.CompactInterval = time.Duration(c.Poll.CompactSeconds) * time.Second
	}
	return p
}

// newSession builds a session from the persistent flags and config
func newSession(cfg *AnalyzerConfig) *tsip.Session {
	policy := cfg.PollPolicy()
	return tsip.NewSession(tsip.SessionOptions{
		ReadOnly: readOnly,
		Passive:  passive,
		Policy:   &policy,
	})
}
