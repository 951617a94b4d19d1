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

package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	typeLink   = "link"
	typeDevice = "device"
)

// Batch is the decoded output of one command invocation.
type Batch struct {
	Links []models.LinkRecord
	IDS   []models.IDSRecord
	// Ignored counts elements with an unknown type tag.
	Ignored int
}

// Empty reports whether the batch holds no records.
func (b *Batch) Empty() bool {
	return len(b.Links) == 0 && len(b.IDS) == 0
}

type linkJSON struct {
	Status     string          `json:"status"`
	SrcIP      string          `json:"src_ip"`
	SrcMAC     string          `json:"src_mac"`
	DstIP      string          `json:"dst_ip"`
	DstMAC     string          `json:"dst_mac"`
	Timestamp  looseString     `json:"timestamp"`
	Attributes json.RawMessage `json:"attributes"`
}

type idsJSON struct {
	IP          string          `json:"ip"`
	Blocked     looseBool       `json:"blocked"`
	BlockedOn   float64         `json:"blocked_on"`
	DangerLevel float64         `json:"danger_level"`
	Attributes  json.RawMessage `json:"attributes"`
	LastUpdate  float64         `json:"last_update"`
}

// Parse decodes a probe's stdout: a JSON array of objects tagged by "type".
// Missing fields take their zero default and unknown fields are ignored.
func Parse(data []byte) (*Batch, error) {
	var elems []json.RawMessage

	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedInput, err)
	}

	batch := &Batch{}

	for i, raw := range elems {
		var tag struct {
			Type string `json:"type"`
		}

		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", models.ErrMalformedInput, i, err)
		}

		switch tag.Type {
		case typeLink:
			var l linkJSON
			if err := json.Unmarshal(raw, &l); err != nil {
				return nil, fmt.Errorf("%w: link element %d: %w", models.ErrMalformedInput, i, err)
			}

			batch.Links = append(batch.Links, models.LinkRecord{
				Status:     l.Status,
				SrcIP:      l.SrcIP,
				SrcMAC:     l.SrcMAC,
				DstIP:      l.DstIP,
				DstMAC:     l.DstMAC,
				Timestamp:  string(l.Timestamp),
				Attributes: attributes(l.Attributes),
			})
		case typeDevice:
			var d idsJSON
			if err := json.Unmarshal(raw, &d); err != nil {
				return nil, fmt.Errorf("%w: device element %d: %w", models.ErrMalformedInput, i, err)
			}

			batch.IDS = append(batch.IDS, models.IDSRecord{
				IP:          d.IP,
				Blocked:     bool(d.Blocked),
				BlockedOn:   int64(d.BlockedOn),
				DangerLevel: int(d.DangerLevel),
				Attributes:  attributes(d.Attributes),
				LastUpdate:  d.LastUpdate,
			})
		default:
			batch.Ignored++
		}
	}

	return batch, nil
}

// attributes returns the compacted attribute object, or "{}" when absent.
func attributes(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.EmptyAttributes
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return models.EmptyAttributes
	}

	return buf.String()
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}

		*s = looseString(v)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*s = looseString(n.String())

	return nil
}

// looseBool accepts true/false, a number (non-zero is true) or a string
// holding either.
type looseBool bool

func (v *looseBool) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = false
	case bool:
		*v = looseBool(t)
	case float64:
		*v = t != 0
	case string:
		if t == "" {
			*v = false

			return nil
		}

		if parsed, err := strconv.ParseBool(t); err == nil {
			*v = looseBool(parsed)

			return nil
		}

		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return fmt.Errorf("%w %q", errInvalidBool, t)
		}

		*v = n != 0
	default:
		return fmt.Errorf("%w %s", errInvalidBool, b)
	}

	return nil
}
