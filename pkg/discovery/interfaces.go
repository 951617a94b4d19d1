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

package discovery

import (
	"context"
	"net"
	"net/netip"
)

//go:generate mockgen -destination=mock_discovery.go -package=discovery github.com/carverauto/lanwatch/pkg/discovery Prober,NeighborTable

// Prober asks whether ip answers on iface. It returns the address and
// hardware address found in the reply, or an error wrapping
// models.ErrProbeTimeout when nothing answered within the probe bound.
type Prober interface {
	Probe(ctx context.Context, iface string, ip netip.Addr) (netip.Addr, net.HardwareAddr, error)
}

// NeighborTable resolves a hardware address to a host name using the
// kernel neighbour table. An unknown MAC yields an empty name.
type NeighborTable interface {
	Hostname(ctx context.Context, mac net.HardwareAddr) (string, error)
}
