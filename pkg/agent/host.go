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
	"context"
	"net"
	"net/netip"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	psnet "github.com/shirou/gopsutil/v3/net"
)

const flagLoopback = "loopback"

// SystemHost reads host facts through gopsutil and the resolver.
type SystemHost struct {
	resolver *net.Resolver
}

var _ Host = (*SystemHost)(nil)

// NewSystemHost returns a Host backed by the running system.
func NewSystemHost() *SystemHost {
	return &SystemHost{resolver: net.DefaultResolver}
}

// Interfaces implements Host.
func (*SystemHost) Interfaces(ctx context.Context) ([]psnet.InterfaceStat, error) {
	return psnet.InterfacesWithContext(ctx)
}

// Facts implements Host. The address is the first IPv4 address the hostname
// resolves to, or the first non-loopback IPv4 address when it does not
// resolve. The hostname is the reverse name of that address when there is
// one.
func (h *SystemHost) Facts(ctx context.Context) (*HostFacts, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}

	ifaces, err := h.Interfaces(ctx)
	if err != nil {
		return nil, err
	}

	facts := &HostFacts{Hostname: info.Hostname}

	if addrs, err := h.resolver.LookupNetIP(ctx, "ip4", info.Hostname); err == nil && len(addrs) > 0 {
		facts.IP = addrs[0].Unmap().String()
	}

	facts.IP, facts.MAC = pickAddress(ifaces, facts.IP)
	if facts.IP == "" {
		return nil, errNoHostAddress
	}

	if names, err := h.resolver.LookupAddr(ctx, facts.IP); err == nil && len(names) > 0 {
		facts.Hostname = strings.TrimSuffix(names[0], ".")
	}

	return facts, nil
}

// pickAddress returns ip and the MAC of the interface holding it. When ip is
// not on a non-loopback interface, which includes the 127.0.1.1 entry many
// distributions map the hostname to, the first non-loopback IPv4 address is
// used instead.
func pickAddress(ifaces []psnet.InterfaceStat, ip string) (string, string) {
	var firstIP, firstMAC string

	for _, st := range ifaces {
		if slices.Contains(st.Flags, flagLoopback) || st.HardwareAddr == "" {
			continue
		}

		for _, a := range st.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil || !prefix.Addr().Is4() {
				continue
			}

			if prefix.Addr().String() == ip {
				return ip, st.HardwareAddr
			}

			if firstIP == "" {
				firstIP, firstMAC = prefix.Addr().String(), st.HardwareAddr
			}
		}
	}

	return firstIP, firstMAC
}
