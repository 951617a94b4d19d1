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

// Package telemetry samples interface counters and per-address bandwidth.
package telemetry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	stepInterfaces = "interfaces"
	stepBandwidth  = "bandwidth"
)

// Collector runs the telemetry round on a fixed interval.
type Collector struct {
	store      db.Service
	counters   CounterSource
	accounting AccountingSource
	interval   time.Duration
	logger     logger.Logger

	// prev is the byte count per address seen in the previous round. Only
	// the Run goroutine touches it.
	prev map[string]uint64
}

// NewCollector builds a collector that samples every interface the counter
// source reports. A nil accounting source disables the bandwidth step.
func NewCollector(
	store db.Service,
	counters CounterSource,
	accounting AccountingSource,
	cfg *config.TelemetryConfig,
	log logger.Logger,
) *Collector {
	return &Collector{
		store:      store,
		counters:   counters,
		accounting: accounting,
		interval:   cfg.Interval.Std(),
		logger:     log,
		prev:       map[string]uint64{},
	}
}

// Run samples until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	c.logger.Info().Dur("interval", c.interval).Msg("Starting telemetry collector")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.runRound(ctx)

		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Context canceled, stopping telemetry collector")

			return nil
		case <-ticker.C:
		}
	}
}

// runRound runs both steps. A failure in one does not skip the other.
func (c *Collector) runRound(ctx context.Context) {
	err := c.collectInterfaces(ctx)
	metrics.TelemetryRoundsTotal.WithLabelValues(stepInterfaces, metrics.Result(err)).Inc()

	if err != nil && ctx.Err() == nil {
		c.logger.Error().Err(err).Msg("Failed to collect interface counters")
	}

	if c.accounting == nil {
		return
	}

	err = c.collectBandwidth(ctx)
	metrics.TelemetryRoundsTotal.WithLabelValues(stepBandwidth, metrics.Result(err)).Inc()

	if err != nil && ctx.Err() == nil {
		c.logger.Error().Err(err).Msg("Failed to collect bandwidth")
	}
}

func (c *Collector) collectInterfaces(ctx context.Context) error {
	ifaces, err := c.counters.Interfaces(ctx)
	if err != nil {
		return err
	}

	var errs []error

	for _, ia := range ifaces {
		cnt, err := c.counters.Counters(ctx, ia.Name)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		ni := &models.NetworkInterface{
			Name:       ia.Name,
			MAC:        ia.MAC,
			IPs:        ia.IPs,
			TxBytes:    cnt.TxBytes,
			TxPackets:  cnt.TxPackets,
			TxDropped:  cnt.TxDropped,
			RxBytes:    cnt.RxBytes,
			RxPackets:  cnt.RxPackets,
			RxDropped:  cnt.RxDropped,
			LastUpdate: models.NowMillis(),
		}

		if err := c.store.UpsertInterface(ctx, ni); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Collector) collectBandwidth(ctx context.Context) error {
	rules, err := c.accounting.Rules(ctx)
	if err != nil {
		return err
	}

	cur := AccumulateBytes(rules)
	bw := Bandwidth(c.prev, cur, c.interval)
	c.prev = cur

	if len(bw) == 0 {
		return nil
	}

	devices, agent, err := c.attribute(ctx, bw)
	if err != nil {
		return err
	}

	if len(devices) == 0 && len(agent) == 0 {
		return nil
	}

	return c.store.UpdateBandwidth(ctx, devices, agent)
}

// attribute maps per-address bandwidth onto device and agent MACs.
func (c *Collector) attribute(ctx context.Context, bw map[string]float64) (devices, agent map[string]float64, err error) {
	list, err := c.store.ListDevices(ctx)
	if err != nil {
		return nil, nil, err
	}

	devices = map[string]float64{}

	for i := range list {
		if v, ok := bw[list[i].IP]; ok {
			devices[list[i].MAC] = v
		}
	}

	agent = map[string]float64{}

	id, err := c.store.GetIdentity(ctx)

	switch {
	case errors.Is(err, db.ErrIdentityNotFound):
	case err != nil:
		return nil, nil, err
	default:
		if v, ok := bw[id.IP]; ok {
			agent[id.MAC] = v
		}
	}

	return devices, agent, nil
}

// AccumulateBytes sums the byte counters of every rule per source and
// destination address. The unspecified address is ignored, as are rules that
// have not matched any traffic.
func AccumulateBytes(rules []AccountingRule) map[string]uint64 {
	cur := map[string]uint64{}

	for _, r := range rules {
		if r.Bytes == 0 {
			continue
		}

		for _, addr := range []string{r.Src, r.Dst} {
			if addr == "" || addr == unspecifiedIPv4 {
				continue
			}

			cur[addr] += r.Bytes
		}
	}

	return cur
}

// Bandwidth returns bits per second per address over interval, rounded to two
// decimals. Addresses absent from prev have no rate yet.
func Bandwidth(prev, cur map[string]uint64, interval time.Duration) map[string]float64 {
	out := map[string]float64{}

	secs := interval.Seconds()
	if secs <= 0 {
		return out
	}

	for addr, c := range cur {
		p, ok := prev[addr]
		if !ok {
			continue
		}

		out[addr] = models.Round2(math.Abs(float64(c)*8-float64(p)*8) / secs)
	}

	return out
}
