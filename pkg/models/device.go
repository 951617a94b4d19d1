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

// Package models holds the data model shared by the agent's producers, the
// state store and the synchronizer.
package models

// Device represents a host discovered on one of the agent's local networks.
// Timestamps are unix epoch milliseconds; zero means "never".
type Device struct {
	MAC            string  `json:"mac"`
	IP             string  `json:"ip"`
	Hostname       string  `json:"hostname"`
	Iface          string  `json:"iface"`
	Bandwidth      float64 `json:"bandwidth"`
	LastUpdate     int64   `json:"last_update"`
	RegistrationTS int64   `json:"registration_ts"`
	OpenTCPPorts   string  `json:"open_tcp_ports"`
	LastTCPUpdate  int64   `json:"last_tcp_update"`
	OpenUDPPorts   string  `json:"open_udp_ports"`
	LastUDPUpdate  int64   `json:"last_udp_update"`
}

// DeviceUpdate carries the identity columns written by the discovery scanner.
type DeviceUpdate struct {
	MAC        string
	IP         string
	Hostname   string
	Iface      string
	LastUpdate int64
}

// DeviceSnapshot is the timestamp triple used to decide whether a device
// changed since it was last transmitted.
type DeviceSnapshot struct {
	LastUpdate    int64
	LastTCPUpdate int64
	LastUDPUpdate int64
}

// Snapshot returns the change-detection triple of the device.
func (d *Device) Snapshot() DeviceSnapshot {
	return DeviceSnapshot{
		LastUpdate:    d.LastUpdate,
		LastTCPUpdate: d.LastTCPUpdate,
		LastUDPUpdate: d.LastUDPUpdate,
	}
}

// PortProtocol selects which port list of a device is written.
type PortProtocol string

const (
	ProtocolTCP PortProtocol = "tcp"
	ProtocolUDP PortProtocol = "udp"
)
