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

// Package db pkg/db/interfaces.go
package db

import (
	"context"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/lanwatch/pkg/db Service

// Service is the agent's durable state store. Producers write through it,
// the synchronizer reads and drains through it.
type Service interface {
	Close() error

	// Device operations.

	// UpsertDevice writes the discovery columns of a device, inserting the
	// row with a fresh registration timestamp when the MAC is new.
	UpsertDevice(ctx context.Context, update *models.DeviceUpdate) error
	// UpdateDevicePorts replaces the open port list of an existing device.
	UpdateDevicePorts(ctx context.Context, mac, ip string, proto models.PortProtocol, ports []int) error
	// UpdateBandwidth sets bandwidth on known devices and on the agent row.
	// Both maps are keyed by MAC; unknown keys are ignored.
	UpdateBandwidth(ctx context.Context, devices, agent map[string]float64) error
	ListDevices(ctx context.Context) ([]models.Device, error)

	// Interface operations.

	UpsertInterface(ctx context.Context, iface *models.NetworkInterface) error
	ListInterfaces(ctx context.Context) ([]models.NetworkInterface, error)

	// Ephemeral record operations.

	InsertLinkRecords(ctx context.Context, records []models.LinkRecord) error
	InsertIDSRecords(ctx context.Context, records []models.IDSRecord) error
	DrainLinkRecords(ctx context.Context) ([]models.LinkRecord, error)
	DrainIDSRecords(ctx context.Context) ([]models.IDSRecord, error)

	// Identity operations.

	GetIdentity(ctx context.Context) (*models.AgentIdentity, error)
	CreateIdentity(ctx context.Context, identity *models.AgentIdentity) error
}
