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
	"errors"

	"github.com/carverauto/lanwatch/pkg/models"
)

const selectIdentitySQL = `
	SELECT id, mac, ip, hostname, substation_name, ifaces, bandwidth, last_update, registration_ts
	FROM agent_data
	LIMIT 1`

// GetIdentity implements Service. It returns ErrIdentityNotFound (wrapped as
// a store error) when the agent has not been registered yet.
func (db *DB) GetIdentity(ctx context.Context) (*models.AgentIdentity, error) {
	var a models.AgentIdentity

	err := db.conn.QueryRowContext(ctx, selectIdentitySQL).Scan(&a.ID, &a.MAC, &a.IP, &a.Hostname,
		&a.SubstationName, &a.Ifaces, &a.Bandwidth, &a.LastUpdate, &a.RegistrationTS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storeError("get_identity", ErrIdentityNotFound)
	}

	if err != nil {
		return nil, storeError("get_identity", err)
	}

	return &a, nil
}

// CreateIdentity implements Service. The identity is written once; a second
// call fails with ErrIdentityExists and leaves the stored row untouched.
func (db *DB) CreateIdentity(ctx context.Context, a *models.AgentIdentity) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_data`).Scan(&count); err != nil {
			return err
		}

		if count > 0 {
			return ErrIdentityExists
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO agent_data (id, mac, ip, hostname, substation_name, ifaces, bandwidth, last_update, registration_ts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.MAC, a.IP, a.Hostname, a.SubstationName, a.Ifaces, a.Bandwidth, a.LastUpdate, a.RegistrationTS)

		return err
	})
	if err != nil {
		return storeError("create_identity", err)
	}

	return nil
}
