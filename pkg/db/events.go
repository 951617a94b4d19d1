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

	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	insertLinkSQL = `
		INSERT INTO link_data (status, src_ip, src_mac, dst_ip, dst_mac, timestamp, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertIDSSQL = `
		INSERT INTO ids_data (ip, blocked, blocked_on, danger_level, attributes, last_update)
		VALUES (?, ?, ?, ?, ?, ?)`
)

// InsertLinkRecords implements Service. The batch is written atomically.
func (db *DB) InsertLinkRecords(ctx context.Context, records []models.LinkRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range records {
			r := &records[i]
			if _, err := tx.ExecContext(ctx, insertLinkSQL,
				r.Status, r.SrcIP, r.SrcMAC, r.DstIP, r.DstMAC, r.Timestamp, r.Attributes); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return storeError("insert_link", err)
	}

	return nil
}

// InsertIDSRecords implements Service. The batch is written atomically.
func (db *DB) InsertIDSRecords(ctx context.Context, records []models.IDSRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range records {
			r := &records[i]
			if _, err := tx.ExecContext(ctx, insertIDSSQL,
				r.IP, r.Blocked, r.BlockedOn, r.DangerLevel, r.Attributes, r.LastUpdate); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return storeError("insert_ids", err)
	}

	return nil
}

// DrainLinkRecords implements Service. See drain for the delivery contract.
func (db *DB) DrainLinkRecords(ctx context.Context) ([]models.LinkRecord, error) {
	var out []models.LinkRecord

	err := db.drain(ctx, "link_data",
		`SELECT status, src_ip, src_mac, dst_ip, dst_mac, timestamp, attributes FROM link_data`,
		func(rows *sql.Rows) error {
			var r models.LinkRecord
			if err := rows.Scan(&r.Status, &r.SrcIP, &r.SrcMAC, &r.DstIP, &r.DstMAC, &r.Timestamp, &r.Attributes); err != nil {
				return err
			}

			out = append(out, r)

			return nil
		})
	if err != nil {
		return nil, storeError("drain_link", err)
	}

	return out, nil
}

// DrainIDSRecords implements Service. See drain for the delivery contract.
func (db *DB) DrainIDSRecords(ctx context.Context) ([]models.IDSRecord, error) {
	var out []models.IDSRecord

	err := db.drain(ctx, "ids_data",
		`SELECT ip, blocked, blocked_on, danger_level, attributes, last_update FROM ids_data`,
		func(rows *sql.Rows) error {
			var r models.IDSRecord
			if err := rows.Scan(&r.IP, &r.Blocked, &r.BlockedOn, &r.DangerLevel, &r.Attributes, &r.LastUpdate); err != nil {
				return err
			}

			out = append(out, r)

			return nil
		})
	if err != nil {
		return nil, storeError("drain_ids", err)
	}

	return out, nil
}

// drain reads every row of table outside a transaction and, when anything was
// read, deletes every row inside a write-locking transaction.
//
// Rows inserted between the read and the delete are removed without having
// been returned. Delivery is at most once and possibly zero; nothing may run
// between the two steps.
func (db *DB) drain(ctx context.Context, table, query string, scan func(*sql.Rows) error) error {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return err
	}

	n := 0

	for rows.Next() {
		if err := scan(rows); err != nil {
			_ = rows.Close()

			return err
		}

		n++
	}

	if err := rows.Err(); err != nil {
		_ = rows.Close()

		return err
	}

	_ = rows.Close()

	if n == 0 {
		return nil
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM "+table)

		return err
	})
}
