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

package telemetry

import (
	"context"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_telemetry.go -package=telemetry github.com/carverauto/lanwatch/pkg/telemetry CounterSource,AccountingSource

// InterfaceAddrs describes a local interface eligible for counter sampling.
type InterfaceAddrs struct {
	Name string
	MAC  string
	IPs  []string
}

// CounterSource reads per-interface traffic counters from the platform.
type CounterSource interface {
	// Interfaces lists non-loopback interfaces that have both an IPv4 and a
	// link-layer address.
	Interfaces(ctx context.Context) ([]InterfaceAddrs, error)
	Counters(ctx context.Context, iface string) (models.InterfaceCounters, error)
}

// AccountingRule is one packet-accounting counter. An unspecified side is
// the zero address 0.0.0.0.
type AccountingRule struct {
	Src   string
	Dst   string
	Bytes uint64
}

// AccountingSource reads the packet-accounting rules.
type AccountingSource interface {
	Rules(ctx context.Context) ([]AccountingRule, error)
}
