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

package sync

import "github.com/carverauto/lanwatch/pkg/models"

// DiffDetector remembers what was last handed to the transport, per entity
// key, and reports only entries that changed since. It is not safe for
// concurrent use; the Synchronizer is its only user.
type DiffDetector struct {
	devices map[string]models.DeviceSnapshot
	ifaces  map[string]int64
}

// NewDiffDetector returns an empty detector. Every entity is new to it.
func NewDiffDetector() *DiffDetector {
	return &DiffDetector{
		devices: map[string]models.DeviceSnapshot{},
		ifaces:  map[string]int64{},
	}
}

// Devices returns the devices, keyed by MAC, whose last-seen, last-TCP-scan
// or last-UDP-scan timestamp differs from the remembered one, and remembers
// the new values.
func (d *DiffDetector) Devices(devices []models.Device) map[string]models.Device {
	delta := map[string]models.Device{}

	for i := range devices {
		dev := &devices[i]
		snap := dev.Snapshot()

		if prev, ok := d.devices[dev.MAC]; ok && prev == snap {
			continue
		}

		d.devices[dev.MAC] = snap
		delta[dev.MAC] = *dev
	}

	return delta
}

// Interfaces returns the interfaces, keyed by name, whose last-update
// timestamp changed, and remembers the new values.
func (d *DiffDetector) Interfaces(ifaces []models.NetworkInterface) map[string]models.NetworkInterface {
	delta := map[string]models.NetworkInterface{}

	for i := range ifaces {
		ni := &ifaces[i]

		if prev, ok := d.ifaces[ni.Name]; ok && prev == ni.LastUpdate {
			continue
		}

		d.ifaces[ni.Name] = ni.LastUpdate
		delta[ni.Name] = *ni
	}

	return delta
}
