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

package db

// Tables dropped on start when the store is reset. agent_data is kept so the
// agent's identity survives restarts.
var volatileTables = []string{
	"agent_devices",
	"net_interface_data",
	"link_data",
	"ids_data",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS agent_devices (
		mac             TEXT PRIMARY KEY,
		ip              TEXT NOT NULL DEFAULT '',
		hostname        TEXT NOT NULL DEFAULT '',
		iface           TEXT NOT NULL DEFAULT '',
		bandwidth       REAL NOT NULL DEFAULT 0,
		last_update     INTEGER NOT NULL DEFAULT 0,
		registration_ts INTEGER NOT NULL DEFAULT 0,
		open_tcp_ports  TEXT NOT NULL DEFAULT '',
		last_tcp_update INTEGER NOT NULL DEFAULT 0,
		open_udp_ports  TEXT NOT NULL DEFAULT '',
		last_udp_update INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS net_interface_data (
		iface       TEXT PRIMARY KEY,
		mac         TEXT NOT NULL DEFAULT '',
		ip          TEXT NOT NULL DEFAULT '',
		tx_bytes    INTEGER NOT NULL DEFAULT 0,
		tx_packets  INTEGER NOT NULL DEFAULT 0,
		tx_dropped  INTEGER NOT NULL DEFAULT 0,
		rx_bytes    INTEGER NOT NULL DEFAULT 0,
		rx_packets  INTEGER NOT NULL DEFAULT 0,
		rx_dropped  INTEGER NOT NULL DEFAULT 0,
		last_update INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS link_data (
		status     TEXT NOT NULL DEFAULT '',
		src_ip     TEXT NOT NULL DEFAULT '',
		src_mac    TEXT NOT NULL DEFAULT '',
		dst_ip     TEXT NOT NULL DEFAULT '',
		dst_mac    TEXT NOT NULL DEFAULT '',
		timestamp  TEXT NOT NULL DEFAULT '',
		attributes TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS ids_data (
		ip           TEXT NOT NULL DEFAULT '',
		blocked      INTEGER NOT NULL DEFAULT 0,
		blocked_on   INTEGER NOT NULL DEFAULT 0,
		danger_level INTEGER NOT NULL DEFAULT 0,
		attributes   TEXT NOT NULL DEFAULT '{}',
		last_update  REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS agent_data (
		id              TEXT PRIMARY KEY,
		mac             TEXT NOT NULL DEFAULT '',
		ip              TEXT NOT NULL DEFAULT '',
		hostname        TEXT NOT NULL DEFAULT '',
		substation_name TEXT NOT NULL DEFAULT '',
		ifaces          TEXT NOT NULL DEFAULT '{}',
		bandwidth       REAL NOT NULL DEFAULT 0,
		last_update     INTEGER NOT NULL DEFAULT 0,
		registration_ts INTEGER NOT NULL DEFAULT 0
	)`,
}
