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
	"bytes"
	"context"
	"net"
	"strings"

	"github.com/vishvananda/netlink"
)

// NetlinkNeighborTable reads the kernel IPv4 neighbour table over netlink and
// reverse-resolves the matching entry. When the address has no PTR record the
// address itself is returned, the same way arp(8) prints it.
type NetlinkNeighborTable struct {
	list     func() ([]netlink.Neigh, error)
	resolver *net.Resolver
}

var _ NeighborTable = (*NetlinkNeighborTable)(nil)

func NewNetlinkNeighborTable() *NetlinkNeighborTable {
	return &NetlinkNeighborTable{
		list: func() ([]netlink.Neigh, error) {
			return netlink.NeighList(0, netlink.FAMILY_V4)
		},
		resolver: net.DefaultResolver,
	}
}

// Hostname implements NeighborTable.
func (t *NetlinkNeighborTable) Hostname(ctx context.Context, mac net.HardwareAddr) (string, error) {
	neighs, err := t.list()
	if err != nil {
		return "", err
	}

	for _, n := range neighs {
		if n.IP == nil || !bytes.Equal(n.HardwareAddr, mac) {
			continue
		}

		ip := n.IP.String()

		names, err := t.resolver.LookupAddr(ctx, ip)
		if err != nil || len(names) == 0 {
			return ip, nil
		}

		return strings.TrimSuffix(names[0], "."), nil
	}

	return "", nil
}
