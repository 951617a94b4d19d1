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

// MessageType is the msg_type discriminator of an outbound message.
type MessageType string

const (
	MsgDevices    MessageType = "devices_data"
	MsgLinks      MessageType = "link_data"
	MsgIDS        MessageType = "ids_data"
	MsgInterfaces MessageType = "iface_data"
)

// PassOrder is the order in which the synchronizer evaluates data kinds.
var PassOrder = []MessageType{MsgDevices, MsgLinks, MsgIDS, MsgInterfaces}

// Message is the envelope streamed to the collector. Data is a map keyed by
// MAC for devices, a map keyed by interface name for interfaces and a list
// for link and IDS records.
type Message struct {
	AgentID        string      `json:"agent_id"`
	MsgType        MessageType `json:"msg_type"`
	Data           interface{} `json:"data"`
	AgentBandwidth *float64    `json:"agent_bandwidth,omitempty"`
}
