/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	DefaultConfigPath = "/etc/lanwatch/agent.json"
	DefaultDBFilePath = "/var/local/agent_sqlite3.db"

	defaultExternalInterval = 3 * time.Second
	maxPort                 = 65535
)

var (
	errMissingServerURL  = errors.New("server_url is required")
	errMissingDBPath     = errors.New("db_file_path is required")
	errUnsupportedScheme = errors.New("unsupported server_url scheme")
	errTimeoutExceeds    = errors.New("external command timeout is longer than interval")
	errNonPositive       = errors.New("must be positive")
	errPortRange         = errors.New("invalid port range")
	errEmptyCommand      = errors.New("external command is empty")
)

// AgentConfig is the complete agent configuration.
type AgentConfig struct {
	DBFilePath      string          `json:"db_file_path" yaml:"db_file_path"`
	ServerURL       string          `json:"server_url" yaml:"server_url"`
	SubstationName  string          `json:"substation_name" yaml:"substation_name"`
	NetInterfaces   []string        `json:"net_interfaces" yaml:"net_interfaces"`
	NoHostnameCheck bool            `json:"no_hostname_check" yaml:"no_hostname_check"`
	UseUUID         bool            `json:"uuid" yaml:"uuid"`
	External        ExternalConfig  `json:"external" yaml:"external"`
	Discovery       DiscoveryConfig `json:"discovery" yaml:"discovery"`
	PortScan        PortScanConfig  `json:"port_scan" yaml:"port_scan"`
	Telemetry       TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Sync            SyncConfig      `json:"sync" yaml:"sync"`
	Store           StoreConfig     `json:"store" yaml:"store"`
	Metrics         MetricsConfig   `json:"metrics" yaml:"metrics"`
	Logging         *logger.Config  `json:"logging" yaml:"logging"`
}

// ExternalConfig holds the external probe commands. Interval and Timeout are
// the defaults for commands that do not set their own; a zero Timeout means
// "same as the interval".
type ExternalConfig struct {
	Interval Duration          `json:"interval" yaml:"interval"`
	Timeout  Duration          `json:"timeout" yaml:"timeout"`
	Commands []ExternalCommand `json:"commands" yaml:"commands"`
}

// ExternalCommand is one periodically invoked shell command.
type ExternalCommand struct {
	Command  string   `json:"command" yaml:"command"`
	Interval Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
	Timeout  Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DiscoveryConfig tunes the ARP sweep.
type DiscoveryConfig struct {
	ProbeTimeout Duration `json:"probe_timeout" yaml:"probe_timeout"`
	Sleep        Duration `json:"sleep" yaml:"sleep"`
	Jitter       Duration `json:"jitter" yaml:"jitter"`
	// MaxTasks bounds concurrent probe tasks per interface. Zero means one
	// task per candidate address.
	MaxTasks int `json:"max_tasks" yaml:"max_tasks"`
}

// PortScanConfig tunes the per-device port scanner.
type PortScanConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled"`
	UDPEnabled     bool     `json:"udp_enabled" yaml:"udp_enabled"`
	TCPFirst       int      `json:"tcp_first" yaml:"tcp_first"`
	TCPLast        int      `json:"tcp_last" yaml:"tcp_last"`
	UDPFirst       int      `json:"udp_first" yaml:"udp_first"`
	UDPLast        int      `json:"udp_last" yaml:"udp_last"`
	ProbeTimeout   Duration `json:"probe_timeout" yaml:"probe_timeout"`
	Concurrency    int      `json:"concurrency" yaml:"concurrency"`
	DevicePauseMin Duration `json:"device_pause_min" yaml:"device_pause_min"`
	DevicePauseMax Duration `json:"device_pause_max" yaml:"device_pause_max"`
	RoundPauseMin  Duration `json:"round_pause_min" yaml:"round_pause_min"`
	RoundPauseMax  Duration `json:"round_pause_max" yaml:"round_pause_max"`
}

// TelemetryConfig selects the sampling interval and accounting chain.
type TelemetryConfig struct {
	Interval Duration `json:"interval" yaml:"interval"`
	Table    string   `json:"table" yaml:"table"`
	Chain    string   `json:"chain" yaml:"chain"`
}

// SyncConfig tunes the synchronizer and its transport.
type SyncConfig struct {
	RetryDelay       Duration `json:"retry_delay" yaml:"retry_delay"`
	PassInterval     Duration `json:"pass_interval" yaml:"pass_interval"`
	HandshakeTimeout Duration `json:"handshake_timeout" yaml:"handshake_timeout"`
	WriteTimeout     Duration `json:"write_timeout" yaml:"write_timeout"`
	SubjectPrefix    string   `json:"subject_prefix" yaml:"subject_prefix"`
}

// StoreConfig tunes the SQLite state store.
type StoreConfig struct {
	ResetOnStart bool     `json:"reset_on_start" yaml:"reset_on_start"`
	BusyTimeout  Duration `json:"busy_timeout" yaml:"busy_timeout"`
}

// MetricsConfig enables the Prometheus endpoint when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// DefaultAgentConfig returns the configuration used for keys that neither
// the file, the environment nor the command line set.
func DefaultAgentConfig() *AgentConfig {
	return &AgentConfig{
		DBFilePath: DefaultDBFilePath,
		External: ExternalConfig{
			Interval: Duration(defaultExternalInterval),
		},
		Discovery: DiscoveryConfig{
			ProbeTimeout: Duration(3 * time.Second),
			Sleep:        Duration(2 * time.Second),
			Jitter:       Duration(500 * time.Millisecond),
		},
		PortScan: PortScanConfig{
			Enabled:        true,
			TCPFirst:       1,
			TCPLast:        512,
			UDPFirst:       1,
			UDPLast:        8,
			ProbeTimeout:   Duration(time.Second),
			Concurrency:    64,
			DevicePauseMin: Duration(2 * time.Millisecond),
			DevicePauseMax: Duration(100 * time.Millisecond),
			RoundPauseMin:  Duration(time.Second),
			RoundPauseMax:  Duration(6 * time.Second),
		},
		Telemetry: TelemetryConfig{
			Interval: Duration(5 * time.Second),
			Table:    "filter",
			Chain:    "COUNTING",
		},
		Sync: SyncConfig{
			RetryDelay:       Duration(3 * time.Second),
			PassInterval:     Duration(2 * time.Second),
			HandshakeTimeout: Duration(10 * time.Second),
			WriteTimeout:     Duration(10 * time.Second),
			SubjectPrefix:    "lanwatch.agent",
		},
		Store: StoreConfig{
			ResetOnStart: true,
			BusyTimeout:  Duration(5 * time.Second),
		},
		Logging: logger.DefaultConfig(),
	}
}

// ResolvedCommands returns the external commands with the global interval and
// timeout applied where a command leaves them unset.
func (e *ExternalConfig) ResolvedCommands() []ExternalCommand {
	out := make([]ExternalCommand, 0, len(e.Commands))

	for _, c := range e.Commands {
		if c.Interval == 0 {
			c.Interval = e.Interval
		}

		if c.Timeout == 0 {
			c.Timeout = e.Timeout
		}

		if c.Timeout == 0 {
			c.Timeout = c.Interval
		}

		out = append(out, c)
	}

	return out
}

// Validate implements Validator. Every error wraps models.ErrConfiguration.
func (c *AgentConfig) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}

	return nil
}

func (c *AgentConfig) validate() error {
	if c.DBFilePath == "" {
		return errMissingDBPath
	}

	if c.ServerURL == "" {
		return errMissingServerURL
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "wss", "nats", "tls":
	default:
		return fmt.Errorf("%w: %q", errUnsupportedScheme, u.Scheme)
	}

	if err := c.External.Validate(); err != nil {
		return err
	}

	if c.PortScan.Enabled {
		if err := validRange(c.PortScan.TCPFirst, c.PortScan.TCPLast); err != nil {
			return fmt.Errorf("port_scan tcp: %w", err)
		}
	}

	if c.PortScan.UDPEnabled {
		if err := validRange(c.PortScan.UDPFirst, c.PortScan.UDPLast); err != nil {
			return fmt.Errorf("port_scan udp: %w", err)
		}
	}

	positives := map[string]Duration{
		"discovery.probe_timeout": c.Discovery.ProbeTimeout,
		"telemetry.interval":      c.Telemetry.Interval,
		"sync.retry_delay":        c.Sync.RetryDelay,
		"sync.pass_interval":      c.Sync.PassInterval,
	}

	for name, d := range positives {
		if d <= 0 {
			return fmt.Errorf("%s %w", name, errNonPositive)
		}
	}

	return nil
}

// Validate checks that no timeout is negative or exceeds its interval.
func (e *ExternalConfig) Validate() error {
	if e.Timeout < 0 {
		return fmt.Errorf("external timeout %w", errNonPositive)
	}

	if e.Timeout > e.Interval {
		return fmt.Errorf("%w: timeout %s, interval %s", errTimeoutExceeds, e.Timeout, e.Interval)
	}

	for _, c := range e.ResolvedCommands() {
		if strings.TrimSpace(c.Command) == "" {
			return errEmptyCommand
		}

		if c.Interval <= 0 {
			return fmt.Errorf("external interval for %q %w", c.Command, errNonPositive)
		}

		if c.Timeout < 0 {
			return fmt.Errorf("external timeout for %q %w", c.Command, errNonPositive)
		}

		if c.Timeout > c.Interval {
			return fmt.Errorf("%w: %q timeout %s, interval %s", errTimeoutExceeds, c.Command, c.Timeout, c.Interval)
		}
	}

	return nil
}

func validRange(first, last int) error {
	if first < 1 || last > maxPort || first > last {
		return fmt.Errorf("%w: %d-%d", errPortRange, first, last)
	}

	return nil
}
