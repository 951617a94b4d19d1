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

// Package metrics exposes the agent's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lanwatch"

// Connection states reported by ConnectionState.
const (
	StateDisconnected = 0
	StateConnecting   = 1
	StateConnected    = 2
)

var (
	// Discovery.
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "probes_total",
			Help:      "ARP probes sent, by interface and result",
		},
		[]string{"iface", "result"}, // answered, timeout, error
	)

	DiscoveryTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "tasks",
			Help:      "Running probe tasks per interface",
		},
		[]string{"iface"},
	)

	// Port scanning.
	PortScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "portscan",
			Name:      "device_scans_total",
			Help:      "Per-device port scans, by protocol and result",
		},
		[]string{"proto", "result"},
	)

	// Store.
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed store operations, by operation",
		},
		[]string{"op"},
	)

	// Telemetry.
	TelemetryRoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "rounds_total",
			Help:      "Telemetry round steps, by step and result",
		},
		[]string{"step", "result"},
	)

	// External commands.
	ExternalRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external",
			Name:      "runs_total",
			Help:      "External command invocations, by outcome",
		},
		[]string{"outcome"}, // ok, empty, timeout, failed, malformed
	)

	ExternalRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external",
			Name:      "records_total",
			Help:      "Records ingested from external commands, by kind",
		},
		[]string{"kind"},
	)

	// Synchronizer.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "messages_sent_total",
			Help:      "Messages streamed to the collector, by message type",
		},
		[]string{"msg_type"},
	)

	ReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "reconnects_total",
			Help:      "Connection attempts made after a failure or disconnect",
		},
	)

	ConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "connection_state",
			Help:      "0 disconnected, 1 connecting, 2 connected",
		},
	)

	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Time taken by one diff-and-send pass",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

// Result returns "ok" for a nil error and "error" otherwise.
func Result(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
