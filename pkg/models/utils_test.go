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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1280, 1280},
		{1.234, 1.23},
		{1.235001, 1.24},
		{0.004, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round2(tt.in), 1e-9)
	}
}

func TestUnixMillis(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	assert.Equal(t, ts.Unix()*1000+6, UnixMillis(ts))
}

func TestDeviceSnapshot(t *testing.T) {
	d := Device{LastUpdate: 1, LastTCPUpdate: 2, LastUDPUpdate: 3}
	assert.Equal(t, DeviceSnapshot{1, 2, 3}, d.Snapshot())
}

func TestMessageOmitsBandwidthWhenUnset(t *testing.T) {
	raw, err := json.Marshal(Message{AgentID: "a", MsgType: MsgLinks, Data: []LinkRecord{}})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "agent_bandwidth")

	bw := 12.5
	raw, err = json.Marshal(Message{AgentID: "a", MsgType: MsgDevices, Data: map[string]Device{}, AgentBandwidth: &bw})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"agent_bandwidth":12.5`)
}

func TestIdentityHeaders(t *testing.T) {
	id := AgentIdentity{ID: "abc", MAC: "aa:bb", SubstationName: "north", RegistrationTS: 42}
	h := id.Headers()

	assert.Equal(t, "abc", h.Get("id"))
	assert.Equal(t, "north", h.Get("substation_name"))
	assert.Equal(t, "42", h.Get("registration_ts"))
}
