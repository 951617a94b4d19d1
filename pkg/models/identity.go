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
	"net/http"
	"strconv"
)

// AgentIdentity is the singleton row describing the host the agent runs on.
type AgentIdentity struct {
	ID             string  `json:"id"`
	MAC            string  `json:"mac"`
	IP             string  `json:"ip"`
	Hostname       string  `json:"hostname"`
	SubstationName string  `json:"substation_name"`
	Ifaces         string  `json:"ifaces"`
	Bandwidth      float64 `json:"bandwidth"`
	LastUpdate     int64   `json:"last_update"`
	RegistrationTS int64   `json:"registration_ts"`
}

// Headers renders the identity as handshake headers. The collector reads the
// agent's registration data from these on connect.
func (a *AgentIdentity) Headers() http.Header {
	h := http.Header{}
	h.Set("id", a.ID)
	h.Set("mac", a.MAC)
	h.Set("ip", a.IP)
	h.Set("hostname", a.Hostname)
	h.Set("substation_name", a.SubstationName)
	h.Set("ifaces", a.Ifaces)
	h.Set("bandwidth", strconv.FormatFloat(a.Bandwidth, 'f', -1, 64))
	h.Set("last_update", strconv.FormatInt(a.LastUpdate, 10))
	h.Set("registration_ts", strconv.FormatInt(a.RegistrationTS, 10))

	return h
}
