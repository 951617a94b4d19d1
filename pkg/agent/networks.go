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

package agent

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/carverauto/lanwatch/pkg/models"
)

const flagPointToPoint = "pointtopoint"

// ResolveNetworks maps configured interface names to the IPv4 networks the
// host holds on them, one entry per address. Unknown interfaces, interfaces
// without IPv4 and point-to-point links, including /32 addresses, are
// configuration errors.
func ResolveNetworks(names []string, ifaces []psnet.InterfaceStat) ([]models.LocalNetwork, error) {
	var networks []models.LocalNetwork

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		idx := slices.IndexFunc(ifaces, func(st psnet.InterfaceStat) bool { return st.Name == name })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %w: %s", models.ErrConfiguration, ErrInterfaceNotFound, name)
		}

		st := ifaces[idx]

		if slices.Contains(st.Flags, flagPointToPoint) {
			return nil, fmt.Errorf("%w: %w: %s", models.ErrConfiguration, ErrPointToPoint, name)
		}

		found := false

		for _, a := range st.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil || !prefix.Addr().Is4() || prefix.Addr().IsLoopback() {
				continue
			}

			if prefix.Bits() == 32 {
				return nil, fmt.Errorf("%w: %w: %s", models.ErrConfiguration, ErrPointToPoint, name)
			}

			networks = append(networks, models.LocalNetwork{Iface: name, CIDR: prefix.String()})
			found = true
		}

		if !found {
			return nil, fmt.Errorf("%w: %w: %s", models.ErrConfiguration, ErrNoIPv4Address, name)
		}
	}

	return networks, nil
}

// InterfaceNames returns the distinct interface names of networks in order.
func InterfaceNames(networks []models.LocalNetwork) []string {
	var names []string

	for _, n := range networks {
		if !slices.Contains(names, n.Iface) {
			names = append(names, n.Iface)
		}
	}

	return names
}
