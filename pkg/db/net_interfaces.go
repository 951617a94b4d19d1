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
	"strings"

	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	updateInterfaceSQL = `
		UPDATE net_interface_data
		SET mac = ?, ip = ?,
		    tx_bytes = ?, tx_packets = ?, tx_dropped = ?,
		    rx_bytes = ?, rx_packets = ?, rx_dropped = ?,
		    last_update = ?
		WHERE iface = ?`

	insertInterfaceSQL = `
		INSERT INTO net_interface_data
			(iface, mac, ip, tx_bytes, tx_packets, tx_dropped, rx_bytes, rx_packets, rx_dropped, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectInterfacesSQL = `
		SELECT iface, mac, ip, tx_bytes, tx_packets, tx_dropped, rx_bytes, rx_packets, rx_dropped, last_update
		FROM net_interface_data`
)

// UpsertInterface implements Service. Addresses are stored comma-joined.
func (db *DB) UpsertInterface(ctx context.Context, iface *models.NetworkInterface) error {
	ips := strings.Join(iface.IPs, ",")

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateInterfaceSQL,
			iface.MAC, ips,
			int64(iface.TxBytes), int64(iface.TxPackets), int64(iface.TxDropped),
			int64(iface.RxBytes), int64(iface.RxPackets), int64(iface.RxDropped),
			iface.LastUpdate, iface.Name)
		if err != nil {
			return err
		}

		if n, err := res.RowsAffected(); err != nil || n > 0 {
			return err
		}

		_, err = tx.ExecContext(ctx, insertInterfaceSQL,
			iface.Name, iface.MAC, ips,
			int64(iface.TxBytes), int64(iface.TxPackets), int64(iface.TxDropped),
			int64(iface.RxBytes), int64(iface.RxPackets), int64(iface.RxDropped),
			iface.LastUpdate)

		return err
	})
	if err != nil {
		return storeError("upsert_interface", err)
	}

	return nil
}

// ListInterfaces implements Service.
func (db *DB) ListInterfaces(ctx context.Context) ([]models.NetworkInterface, error) {
	rows, err := db.conn.QueryContext(ctx, selectInterfacesSQL)
	if err != nil {
		return nil, storeError("list_interfaces", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.NetworkInterface

	for rows.Next() {
		var (
			i             models.NetworkInterface
			ips           string
			txB, txP, txD int64
			rxB, rxP, rxD int64
		)

		if err := rows.Scan(&i.Name, &i.MAC, &ips, &txB, &txP, &txD, &rxB, &rxP, &rxD, &i.LastUpdate); err != nil {
			return nil, storeError("list_interfaces", err)
		}

		i.IPs = splitIPs(ips)
		i.TxBytes, i.TxPackets, i.TxDropped = uint64(txB), uint64(txP), uint64(txD)
		i.RxBytes, i.RxPackets, i.RxDropped = uint64(rxB), uint64(rxP), uint64(rxD)

		out = append(out, i)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("list_interfaces", err)
	}

	return out, nil
}

func splitIPs(s string) []string {
	if s == "" {
		return []string{}
	}

	return strings.Split(s, ",")
}
