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

package telemetry

import (
	"context"
	"net"

	"github.com/coreos/go-iptables/iptables"
)

const unspecifiedIPv4 = "0.0.0.0"

// statsReader is the subset of *iptables.IPTables used here.
type statsReader interface {
	StructuredStats(table, chain string) ([]iptables.Stat, error)
}

// IPTablesAccountingSource reads byte counters from the rules of one
// iptables chain.
type IPTablesAccountingSource struct {
	ipt   statsReader
	table string
	chain string
}

var _ AccountingSource = (*IPTablesAccountingSource)(nil)

// NewIPTablesAccountingSource opens iptables for table and chain, e.g.
// "filter" and "COUNTING".
func NewIPTablesAccountingSource(table, chain string) (*IPTablesAccountingSource, error) {
	ipt, err := iptables.New()
	if err != nil {
		return nil, err
	}

	return &IPTablesAccountingSource{ipt: ipt, table: table, chain: chain}, nil
}

// Rules implements AccountingSource.
func (s *IPTablesAccountingSource) Rules(_ context.Context) ([]AccountingRule, error) {
	stats, err := s.ipt.StructuredStats(s.table, s.chain)
	if err != nil {
		return nil, err
	}

	rules := make([]AccountingRule, 0, len(stats))

	for _, st := range stats {
		rules = append(rules, AccountingRule{
			Src:   netAddr(st.Source),
			Dst:   netAddr(st.Destination),
			Bytes: st.Bytes,
		})
	}

	return rules, nil
}

func netAddr(n *net.IPNet) string {
	if n == nil {
		return unspecifiedIPv4
	}

	return n.IP.String()
}
