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

// EphemeralKind names a drain table.
type EphemeralKind string

const (
	KindLink EphemeralKind = "link"
	KindIDS  EphemeralKind = "ids"
)

// LinkRecord is a link/route observation reported by an external probe.
// Attributes holds the probe's free-form attribute object as JSON text.
type LinkRecord struct {
	Status     string `json:"status"`
	SrcIP      string `json:"src_ip"`
	SrcMAC     string `json:"src_mac"`
	DstIP      string `json:"dst_ip"`
	DstMAC     string `json:"dst_mac"`
	Timestamp  string `json:"timestamp"`
	Attributes string `json:"attributes"`
}

// IDSRecord is an intrusion-detection observation about a single address.
type IDSRecord struct {
	IP          string  `json:"ip"`
	Blocked     bool    `json:"blocked"`
	BlockedOn   int64   `json:"blocked_on"`
	DangerLevel int     `json:"danger_level"`
	Attributes  string  `json:"attributes"`
	LastUpdate  float64 `json:"last_update"`
}

// EmptyAttributes is the stored form of a missing attribute object.
const EmptyAttributes = "{}"
