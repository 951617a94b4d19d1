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

// Package sweeper runs the per-device port scan loop.
package sweeper

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/scan"
)

// portRange is an inclusive port range.
type portRange struct {
	first, last int
}

// pass is one protocol's scan over every known device.
type pass struct {
	proto   models.PortProtocol
	scanner scan.PortScanner
	ports   portRange
}

// PortSweeper scans every known device for open ports, one device at a time,
// and writes the open port list back to the store.
type PortSweeper struct {
	store  db.Service
	passes []pass

	devicePauseMin, devicePauseMax time.Duration
	roundPauseMin, roundPauseMax   time.Duration

	logger logger.Logger
}

// NewPortSweeper builds a sweeper. A nil tcp or udp scanner disables that
// protocol.
func NewPortSweeper(store db.Service, tcp, udp scan.PortScanner, cfg *config.PortScanConfig, log logger.Logger) *PortSweeper {
	s := &PortSweeper{
		store:          store,
		devicePauseMin: cfg.DevicePauseMin.Std(),
		devicePauseMax: cfg.DevicePauseMax.Std(),
		roundPauseMin:  cfg.RoundPauseMin.Std(),
		roundPauseMax:  cfg.RoundPauseMax.Std(),
		logger:         log,
	}

	if tcp != nil {
		s.passes = append(s.passes, pass{proto: models.ProtocolTCP, scanner: tcp, ports: portRange{cfg.TCPFirst, cfg.TCPLast}})
	}

	if udp != nil {
		s.passes = append(s.passes, pass{proto: models.ProtocolUDP, scanner: udp, ports: portRange{cfg.UDPFirst, cfg.UDPLast}})
	}

	return s
}

// Run scans in rounds until ctx is cancelled.
func (s *PortSweeper) Run(ctx context.Context) error {
	if len(s.passes) == 0 {
		s.logger.Info().Msg("Port scanning disabled")

		return nil
	}

	s.logger.Info().Int("passes", len(s.passes)).Msg("Starting port sweeper")

	for {
		s.runRound(ctx)

		if !sleepCtx(ctx, jitter(s.roundPauseMin, s.roundPauseMax)) {
			s.logger.Info().Msg("Context canceled, stopping port sweeper")

			return nil
		}
	}
}

// runRound runs every enabled pass once.
func (s *PortSweeper) runRound(ctx context.Context) {
	for _, p := range s.passes {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()

		s.logger.Debug().Str("proto", string(p.proto)).Msg("Start scanning ports")
		s.scanDevices(ctx, p)
		s.logger.Debug().
			Str("proto", string(p.proto)).
			Dur("took", time.Since(start)).
			Msg("Finished scanning ports")
	}
}

func (s *PortSweeper) scanDevices(ctx context.Context, p pass) {
	devices, err := s.store.ListDevices(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("Failed to list devices")
		}

		return
	}

	for i := range devices {
		d := &devices[i]

		s.scanDevice(ctx, p, d)

		if !sleepCtx(ctx, jitter(s.devicePauseMin, s.devicePauseMax)) {
			return
		}
	}
}

// scanDevice probes one device. Failures are logged and never stop the pass.
func (s *PortSweeper) scanDevice(ctx context.Context, p pass, d *models.Device) {
	open, err := p.scanner.ScanRange(ctx, d.IP, p.ports.first, p.ports.last)
	if err != nil {
		if ctx.Err() == nil {
			metrics.PortScansTotal.WithLabelValues(string(p.proto), "error").Inc()
			s.logger.Warn().Err(err).Str("ip", d.IP).Str("proto", string(p.proto)).Msg("Port scan failed")
		}

		return
	}

	metrics.PortScansTotal.WithLabelValues(string(p.proto), "ok").Inc()

	if len(open) == 0 {
		return
	}

	if err := s.store.UpdateDevicePorts(ctx, d.MAC, d.IP, p.proto, open); err != nil {
		s.logger.Error().Err(err).Str("mac", d.MAC).Msg("Failed to store open ports")
	}
}

// jitter returns a uniformly random duration in [lo, hi].
func jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}

	return lo + rand.N(hi-lo+1)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
