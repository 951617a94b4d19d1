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

// Package discovery sweeps the agent's local networks with ARP and records
// every device that answers.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/scan"
)

const (
	minPrefixBits = 24
	maxPrefixBits = 29 // /30 and /31 are point-to-point links

	defaultSleep       = 2 * time.Second
	defaultJitter      = 500 * time.Millisecond
	hostnameLookupTime = 2 * time.Second
)

// Scanner runs one probe task per candidate address of each configured
// network. Tasks never finish on their own; they stop when the context ends.
type Scanner struct {
	store     db.Service
	prober    Prober
	neighbors NeighborTable
	sleep     time.Duration
	jitter    time.Duration
	maxTasks  int
	logger    logger.Logger
}

// NewScanner builds a Scanner. neighbors may be nil, in which case devices
// are stored without a hostname.
func NewScanner(store db.Service, prober Prober, neighbors NeighborTable, cfg *config.DiscoveryConfig, log logger.Logger) *Scanner {
	s := &Scanner{
		store:     store,
		prober:    prober,
		neighbors: neighbors,
		sleep:     defaultSleep,
		jitter:    defaultJitter,
		logger:    log,
	}

	if cfg != nil {
		if cfg.Sleep > 0 {
			s.sleep = cfg.Sleep.Std()
		}

		if cfg.Jitter >= 0 {
			s.jitter = cfg.Jitter.Std()
		}

		s.maxTasks = cfg.MaxTasks
	}

	return s
}

// Plan returns the addresses swept on network: every host address of its
// IPv4 prefix except the agent's own. Prefixes outside /24 to /29 are
// rejected, including the /30 and /31 point-to-point links.
func Plan(network models.LocalNetwork) ([]netip.Addr, error) {
	prefix, err := netip.ParsePrefix(network.CIDR)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", network.Iface, err)
	}

	if !prefix.Addr().Is4() || prefix.Bits() < minPrefixBits || prefix.Bits() > maxPrefixBits {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedPrefix, network.CIDR, network.Iface)
	}

	return scan.HostAddresses(prefix, prefix.Addr())
}

// Run sweeps networks until ctx is cancelled. Networks that cannot be
// planned are logged and skipped.
func (s *Scanner) Run(ctx context.Context, networks []models.LocalNetwork) error {
	g, ctx := errgroup.WithContext(ctx)

	started := 0

	for _, network := range networks {
		addrs, err := Plan(network)
		if err != nil {
			s.logger.Error().Err(err).Str("iface", network.Iface).Msg("Skipping network")

			continue
		}

		pools := s.partition(network.Iface, addrs)
		for _, tasks := range pools {
			g.Go(func() error {
				return s.runWorker(ctx, tasks)
			})
		}

		metrics.DiscoveryTasks.WithLabelValues(network.Iface).Set(float64(len(addrs)))

		s.logger.Info().
			Str("iface", network.Iface).
			Str("cidr", network.CIDR).
			Int("tasks", len(addrs)).
			Int("workers", len(pools)).
			Msg("Starting device discovery")

		started += len(addrs)
	}

	if started == 0 {
		s.logger.Warn().Msg("No probe tasks started")

		return nil
	}

	return g.Wait()
}

// partition spreads the tasks of one network over the worker pool. Without a
// limit every task gets its own worker.
func (s *Scanner) partition(iface string, addrs []netip.Addr) [][]*task {
	workers := len(addrs)
	if s.maxTasks > 0 && s.maxTasks < workers {
		workers = s.maxTasks
	}

	pools := make([][]*task, workers)

	for i, addr := range addrs {
		pools[i%workers] = append(pools[i%workers], &task{iface: iface, addr: addr})
	}

	return pools
}

type taskState int

const (
	stateProbe taskState = iota
	stateUpsert
	stateSleep
)

// task is the per-address probe loop: Probe, Upsert on a reply, Sleep.
type task struct {
	iface string
	addr  netip.Addr
	state taskState

	replyIP  netip.Addr
	replyMAC net.HardwareAddr

	hostname         string
	hostnameResolved bool
}

func (s *Scanner) runWorker(ctx context.Context, tasks []*task) error {
	for {
		for _, t := range tasks {
			for t.state != stateSleep {
				if ctx.Err() != nil {
					return nil
				}

				s.step(ctx, t)
			}

			t.state = stateProbe

			if !sleepCtx(ctx, s.pause()) {
				return nil
			}
		}
	}
}

// step advances t by one state.
func (s *Scanner) step(ctx context.Context, t *task) {
	switch t.state {
	case stateProbe:
		ip, mac, err := s.prober.Probe(ctx, t.iface, t.addr)
		if err != nil {
			s.recordProbeError(t, err)
			t.state = stateSleep

			return
		}

		metrics.ProbesTotal.WithLabelValues(t.iface, "answered").Inc()

		t.replyIP, t.replyMAC = ip, mac
		t.state = stateUpsert
	case stateUpsert:
		if !t.hostnameResolved {
			t.hostname = s.lookupHostname(ctx, t.replyMAC)
			t.hostnameResolved = true
		}

		err := s.store.UpsertDevice(ctx, &models.DeviceUpdate{
			MAC:        t.replyMAC.String(),
			IP:         t.replyIP.String(),
			Hostname:   t.hostname,
			Iface:      t.iface,
			LastUpdate: models.NowMillis(),
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Str("ip", t.replyIP.String()).Msg("Failed to store device")
		}

		t.state = stateSleep
	case stateSleep:
	}
}

func (s *Scanner) recordProbeError(t *task, err error) {
	if errors.Is(err, models.ErrProbeTimeout) {
		metrics.ProbesTotal.WithLabelValues(t.iface, "timeout").Inc()

		return
	}

	metrics.ProbesTotal.WithLabelValues(t.iface, "error").Inc()
	s.logger.Trace().Err(err).Str("ip", t.addr.String()).Msg("Probe failed")
}

func (s *Scanner) lookupHostname(ctx context.Context, mac net.HardwareAddr) string {
	if s.neighbors == nil {
		return ""
	}

	lookupCtx, cancel := context.WithTimeout(ctx, hostnameLookupTime)
	defer cancel()

	name, err := s.neighbors.Hostname(lookupCtx, mac)
	if err != nil {
		s.logger.Debug().Err(err).Str("mac", mac.String()).Msg("Neighbour lookup failed")

		return ""
	}

	return name
}

func (s *Scanner) pause() time.Duration {
	if s.jitter <= 0 {
		return s.sleep
	}

	return s.sleep + rand.N(s.jitter)
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
