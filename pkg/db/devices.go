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

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	updateDeviceSQL = `
		UPDATE agent_devices
		SET ip = ?,
		    iface = ?,
		    hostname = CASE WHEN ? = '' THEN hostname ELSE ? END,
		    last_update = ?
		WHERE mac = ?`

	insertDeviceSQL = `
		INSERT INTO agent_devices (mac, ip, hostname, iface, last_update, registration_ts)
		VALUES (?, ?, ?, ?, ?, ?)`

	updateTCPPortsSQL = `
		UPDATE agent_devices
		SET open_tcp_ports = ?, last_tcp_update = ?
		WHERE mac = ? AND ip = ?`

	updateUDPPortsSQL = `
		UPDATE agent_devices
		SET open_udp_ports = ?, last_udp_update = ?
		WHERE mac = ? AND ip = ?`

	selectDevicesSQL = `
		SELECT mac, ip, hostname, iface, bandwidth, last_update, registration_ts,
		       open_tcp_ports, last_tcp_update, open_udp_ports, last_udp_update
		FROM agent_devices`
)

// UpsertDevice implements Service. The UPDATE and the fallback INSERT share
// one transaction, so racing writers on the same MAC never create two rows.
// An empty hostname keeps the stored one.
func (db *DB) UpsertDevice(ctx context.Context, u *models.DeviceUpdate) error {
	if u == nil || u.MAC == "" {
		return storeError("upsert_device", ErrDeviceMACMissing)
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateDeviceSQL,
			u.IP, u.Iface, u.Hostname, u.Hostname, u.LastUpdate, u.MAC)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if n > 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, insertDeviceSQL,
			u.MAC, u.IP, u.Hostname, u.Iface, u.LastUpdate, models.NowMillis())

		return err
	})
	if err != nil {
		return storeError("upsert_device", err)
	}

	return nil
}

// UpdateDevicePorts implements Service. Rows that do not match both mac and
// ip are left alone.
func (db *DB) UpdateDevicePorts(ctx context.Context, mac, ip string, proto models.PortProtocol, ports []int) error {
	var query string

	switch proto {
	case models.ProtocolTCP:
		query = updateTCPPortsSQL
	case models.ProtocolUDP:
		query = updateUDPPortsSQL
	default:
		return storeError("update_ports", fmt.Errorf("%w: %q", ErrInvalidProtocol, proto))
	}

	if _, err := db.conn.ExecContext(ctx, query, JoinPorts(ports), models.NowMillis(), mac, ip); err != nil {
		return storeError("update_ports", err)
	}

	return nil
}

// UpdateBandwidth implements Service.
func (db *DB) UpdateBandwidth(ctx context.Context, devices, agent map[string]float64) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		for mac, bw := range agent {
			if _, err := tx.ExecContext(ctx, `UPDATE agent_data SET bandwidth = ? WHERE mac = ?`, bw, mac); err != nil {
				return err
			}
		}

		for mac, bw := range devices {
			if _, err := tx.ExecContext(ctx, `UPDATE agent_devices SET bandwidth = ? WHERE mac = ?`, bw, mac); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return storeError("update_bandwidth", err)
	}

	return nil
}

// ListDevices implements Service.
func (db *DB) ListDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := db.conn.QueryContext(ctx, selectDevicesSQL)
	if err != nil {
		return nil, storeError("list_devices", err)
	}
	defer func() { _ = rows.Close() }()

	var devices []models.Device

	for rows.Next() {
		var d models.Device

		if err := rows.Scan(&d.MAC, &d.IP, &d.Hostname, &d.Iface, &d.Bandwidth, &d.LastUpdate,
			&d.RegistrationTS, &d.OpenTCPPorts, &d.LastTCPUpdate, &d.OpenUDPPorts, &d.LastUDPUpdate); err != nil {
			return nil, storeError("list_devices", err)
		}

		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("list_devices", err)
	}

	return devices, nil
}

// JoinPorts renders ports as the stored comma-joined list, e.g. "22,80,443".
func JoinPorts(ports []int) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}

	return strings.Join(parts, ",")
}
