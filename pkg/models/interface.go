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

package models

// NetworkInterface holds the latest counter sample of a local interface.
type NetworkInterface struct {
	Name       string   `json:"-"`
	MAC        string   `json:"mac"`
	IPs        []string `json:"ip"`
	TxBytes    uint64   `json:"tx_bytes"`
	TxPackets  uint64   `json:"tx_packets"`
	TxDropped  uint64   `json:"tx_dropped"`
	RxBytes    uint64   `json:"rx_bytes"`
	RxPackets  uint64   `json:"rx_packets"`
	RxDropped  uint64   `json:"rx_dropped"`
	LastUpdate int64    `json:"last_update"`
}

// InterfaceCounters is a raw sample from the platform counter source.
type InterfaceCounters struct {
	RxBytes   uint64
	RxPackets uint64
	RxDropped uint64
	TxBytes   uint64
	TxPackets uint64
	TxDropped uint64
}

// LocalNetwork is a configured interface together with the IPv4 address and
// prefix the agent holds on it, e.g. {"eth0", "192.168.1.10/24"}.
type LocalNetwork struct {
	Iface string `json:"iface"`
	CIDR  string `json:"ip"`
}
