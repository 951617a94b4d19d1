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
	"fmt"
	"net/netip"
	"slices"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/carverauto/lanwatch/pkg/models"
)

// PsutilCounterSource reads interface addresses and counters through gopsutil.
type PsutilCounterSource struct{}

var _ CounterSource = PsutilCounterSource{}

// Interfaces implements CounterSource.
func (PsutilCounterSource) Interfaces(ctx context.Context) ([]InterfaceAddrs, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var out []InterfaceAddrs

	for _, st := range stats {
		if slices.Contains(st.Flags, "loopback") || st.HardwareAddr == "" {
			continue
		}

		var ips []string

		for _, a := range st.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil || !prefix.Addr().Is4() {
				continue
			}

			ips = append(ips, prefix.Addr().String())
		}

		if len(ips) == 0 {
			continue
		}

		out = append(out, InterfaceAddrs{Name: st.Name, MAC: st.HardwareAddr, IPs: ips})
	}

	return out, nil
}

// Counters implements CounterSource.
func (PsutilCounterSource) Counters(ctx context.Context, iface string) (models.InterfaceCounters, error) {
	stats, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return models.InterfaceCounters{}, err
	}

	for _, st := range stats {
		if st.Name != iface {
			continue
		}

		return models.InterfaceCounters{
			RxBytes:   st.BytesRecv,
			RxPackets: st.PacketsRecv,
			RxDropped: st.Dropin,
			TxBytes:   st.BytesSent,
			TxPackets: st.PacketsSent,
			TxDropped: st.Dropout,
		}, nil
	}

	return models.InterfaceCounters{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, iface)
}
