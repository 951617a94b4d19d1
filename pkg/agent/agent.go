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

// Package agent builds the agent's workers from configuration and runs them
// until shutdown.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/discovery"
	"github.com/carverauto/lanwatch/pkg/external"
	"github.com/carverauto/lanwatch/pkg/lifecycle"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/scan"
	"github.com/carverauto/lanwatch/pkg/sweeper"
	"github.com/carverauto/lanwatch/pkg/sync"
	"github.com/carverauto/lanwatch/pkg/telemetry"
	"github.com/carverauto/lanwatch/pkg/transport"
)

type worker struct {
	name string
	run  func(ctx context.Context) error
}

// Agent owns the store and every worker goroutine.
type Agent struct {
	store    db.Service
	identity *models.AgentIdentity
	networks []models.LocalNetwork
	workers  []worker
	closers  []io.Closer
	logger   logger.Logger
}

var _ lifecycle.Service = (*Agent)(nil)

// New opens the store, registers the agent identity and builds the workers
// selected by cfg. cfg must already be validated.
func New(ctx context.Context, cfg *config.AgentConfig, log logger.Logger) (*Agent, error) {
	store, err := db.New(ctx, cfg.DBFilePath, db.Options{
		ResetOnStart: cfg.Store.ResetOnStart,
		BusyTimeout:  cfg.Store.BusyTimeout.Std(),
	}, log.WithComponent("db"))
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, store, NewSystemHost(), log)
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	return a, nil
}

func build(ctx context.Context, cfg *config.AgentConfig, store db.Service, host Host, log logger.Logger) (*Agent, error) {
	ifaces, err := host.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list network interfaces: %w", err)
	}

	networks, err := ResolveNetworks(cfg.NetInterfaces, ifaces)
	if err != nil {
		return nil, err
	}

	identity, err := BootstrapIdentity(ctx, store, host, networks, IdentityOptions{
		SubstationName: cfg.SubstationName,
		UseUUID:        cfg.UseUUID,
	}, log.WithComponent("identity"))
	if err != nil {
		return nil, err
	}

	a := &Agent{
		store:    store,
		identity: identity,
		networks: networks,
		logger:   log,
	}

	if len(networks) > 0 {
		a.addScanners(cfg, log)
	} else {
		log.Info().Msg("No network interfaces, disabling device and port scanners")
	}

	a.addTelemetry(cfg, log)

	ingestor, err := external.NewIngestor(store, external.ShellRunner{}, &cfg.External, log.WithComponent("external"))
	if err != nil {
		return nil, err
	}

	a.add("external", ingestor.Run)

	dialer, err := transport.NewDialer(cfg.ServerURL, transport.Options{
		NoHostnameCheck:  cfg.NoHostnameCheck,
		HandshakeTimeout: cfg.Sync.HandshakeTimeout.Std(),
		WriteTimeout:     cfg.Sync.WriteTimeout.Std(),
		SubjectPrefix:    cfg.Sync.SubjectPrefix,
	}, log.WithComponent("transport"))
	if err != nil {
		return nil, err
	}

	if cfg.NoHostnameCheck {
		log.Info().Msg("Disabling TLS certificate hostname validation as requested")
	}

	a.add("sync", sync.NewSynchronizer(store, dialer, &cfg.Sync, log.WithComponent("sync")).Run)

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		a.add("metrics", serveMetrics(addr, log.WithComponent("metrics")))
	}

	return a, nil
}

// serveMetrics runs the metrics endpoint. A serve failure is logged and the
// worker exits cleanly so the producers and the synchronizer keep running.
func serveMetrics(addr string, log logger.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := metrics.Serve(ctx, addr, log); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics endpoint stopped")
		}

		return nil
	}
}

func (a *Agent) addScanners(cfg *config.AgentConfig, log logger.Logger) {
	log.Info().Strs("interfaces", InterfaceNames(a.networks)).Msg("Running device and port scanners")

	prober := discovery.NewARPProber(cfg.Discovery.ProbeTimeout.Std(), log.WithComponent("arp"))
	a.closers = append(a.closers, prober)

	scanner := discovery.NewScanner(a.store, prober, discovery.NewNetlinkNeighborTable(), &cfg.Discovery, log.WithComponent("discovery"))
	networks := a.networks

	a.add("discovery", func(ctx context.Context) error {
		return scanner.Run(ctx, networks)
	})

	ps := &cfg.PortScan
	scanLog := log.WithComponent("portscan")

	var tcp, udp scan.PortScanner

	if ps.Enabled {
		tcp = scan.NewTCPSweeper(ps.ProbeTimeout.Std(), ps.Concurrency, scanLog)
	}

	if ps.UDPEnabled {
		udp = scan.NewUDPProber(ps.ProbeTimeout.Std(), ps.Concurrency, scanLog)
	}

	if tcp == nil && udp == nil {
		log.Info().Msg("Port scanning disabled")

		return
	}

	a.add("portscan", sweeper.NewPortSweeper(a.store, tcp, udp, ps, scanLog).Run)
}

func (a *Agent) addTelemetry(cfg *config.AgentConfig, log logger.Logger) {
	telemetryLog := log.WithComponent("telemetry")

	var accounting telemetry.AccountingSource

	src, err := telemetry.NewIPTablesAccountingSource(cfg.Telemetry.Table, cfg.Telemetry.Chain)
	if err != nil {
		telemetryLog.Warn().Err(err).Msg("Packet accounting unavailable, bandwidth disabled")
	} else {
		accounting = src
	}

	collector := telemetry.NewCollector(a.store, telemetry.PsutilCounterSource{}, accounting,
		&cfg.Telemetry, telemetryLog)

	a.add("telemetry", collector.Run)
}

func (a *Agent) add(name string, run func(ctx context.Context) error) {
	a.workers = append(a.workers, worker{name: name, run: run})
}

// Identity returns the registered agent identity.
func (a *Agent) Identity() *models.AgentIdentity {
	return a.identity
}

// Workers returns the names of the configured workers.
func (a *Agent) Workers() []string {
	names := make([]string, 0, len(a.workers))
	for _, w := range a.workers {
		names = append(names, w.name)
	}

	return names
}

// Run starts every worker and blocks until they all return. The first worker
// error cancels the rest.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info().Strs("workers", a.Workers()).Str("agent_id", a.identity.ID).Msg("Starting agent")

	g, ctx := errgroup.WithContext(ctx)

	for _, w := range a.workers {
		g.Go(func() error {
			if err := w.run(ctx); err != nil {
				return fmt.Errorf("%s: %w", w.name, err)
			}

			a.logger.Debug().Str("worker", w.name).Msg("Worker stopped")

			return nil
		})
	}

	return g.Wait()
}

// Close releases the probe sockets and the store.
func (a *Agent) Close() error {
	var errs []error

	for _, c := range slices.Backward(a.closers) {
		errs = append(errs, c.Close())
	}

	errs = append(errs, a.store.Close())

	return errors.Join(errs...)
}
