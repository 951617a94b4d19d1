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

// Package sync streams the store's delta to the collector over a
// reconnecting connection.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/transport"
)

// State is the connection state of the Synchronizer.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var errPeerGone = errors.New("peer closed the connection")

// Synchronizer is the only component that reads the store on behalf of the
// network. Delivery is best effort: the remembered snapshot advances before
// the send, so a failed send is not retried unless the entity changes again.
type Synchronizer struct {
	store  db.Service
	dialer transport.Dialer
	diff   *DiffDetector

	retryDelay   time.Duration
	passInterval time.Duration

	state  State
	logger logger.Logger
}

// NewSynchronizer builds a synchronizer.
func NewSynchronizer(store db.Service, dialer transport.Dialer, cfg *config.SyncConfig, log logger.Logger) *Synchronizer {
	return &Synchronizer{
		store:        store,
		dialer:       dialer,
		diff:         NewDiffDetector(),
		retryDelay:   cfg.RetryDelay.Std(),
		passInterval: cfg.PassInterval.Std(),
		state:        Disconnected,
		logger:       log,
	}
}

// Run connects and streams until ctx is cancelled. Connection failures are
// retried forever after a fixed delay.
func (s *Synchronizer) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)

		s.setState(Disconnected)

		if ctx.Err() != nil {
			s.logger.Info().Msg("Context canceled, stopping synchronizer")

			return nil
		}

		s.logger.Warn().Err(err).Dur("retry_in", s.retryDelay).Msg("Disconnected from collector")

		timer := time.NewTimer(s.retryDelay)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("Context canceled, stopping synchronizer")

			return nil
		case <-timer.C:
		}

		metrics.ReconnectsTotal.Inc()
	}
}

// session runs one connection from dial to teardown.
func (s *Synchronizer) session(ctx context.Context) error {
	s.setState(Connecting)

	identity, err := s.store.GetIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to load agent identity: %w", err)
	}

	conn, err := s.dialer.Dial(ctx, identity)
	if err != nil {
		return err
	}

	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to close connection")
		}
	}()

	s.setState(Connected)
	s.logger.Info().Str("agent_id", identity.ID).Msg("Connected to collector")

	for {
		if err := s.Pass(ctx, conn, identity.ID); err != nil {
			return err
		}

		timer := time.NewTimer(s.passInterval)

		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-conn.Done():
			timer.Stop()

			return fmt.Errorf("%w: %w", models.ErrTransport, errPeerGone)
		case <-timer.C:
		}
	}
}

// Pass evaluates every data kind once, in order, and sends each non-empty
// delta. It returns on the first send error; kinds after it are left for the
// next connection. Store errors skip only the affected kind.
func (s *Synchronizer) Pass(ctx context.Context, conn transport.Conn, agentID string) error {
	start := time.Now()
	defer func() { metrics.PassDuration.Observe(time.Since(start).Seconds()) }()

	for _, kind := range models.PassOrder {
		msg, err := s.build(ctx, kind, agentID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			s.logger.Error().Err(err).Str("msg_type", string(kind)).Msg("Failed to read data")

			continue
		}

		if msg == nil {
			continue
		}

		s.logger.Debug().Str("msg_type", string(kind)).Msg("Sending data")

		if err := conn.Send(ctx, msg); err != nil {
			return err
		}

		metrics.MessagesSentTotal.WithLabelValues(string(kind)).Inc()
	}

	return nil
}

// build reads one kind from the store and wraps its delta. A nil message
// means there is nothing to send.
func (s *Synchronizer) build(ctx context.Context, kind models.MessageType, agentID string) (*models.Message, error) {
	var data interface{}

	switch kind {
	case models.MsgDevices:
		devices, err := s.store.ListDevices(ctx)
		if err != nil {
			return nil, err
		}

		delta := s.diff.Devices(devices)
		if len(delta) == 0 {
			return nil, nil
		}

		msg := &models.Message{AgentID: agentID, MsgType: kind, Data: delta}
		msg.AgentBandwidth = s.agentBandwidth(ctx)

		return msg, nil
	case models.MsgLinks:
		records, err := s.store.DrainLinkRecords(ctx)
		if err != nil || len(records) == 0 {
			return nil, err
		}

		data = records
	case models.MsgIDS:
		records, err := s.store.DrainIDSRecords(ctx)
		if err != nil || len(records) == 0 {
			return nil, err
		}

		data = records
	case models.MsgInterfaces:
		ifaces, err := s.store.ListInterfaces(ctx)
		if err != nil {
			return nil, err
		}

		delta := s.diff.Interfaces(ifaces)
		if len(delta) == 0 {
			return nil, nil
		}

		data = delta
	default:
		return nil, nil
	}

	return &models.Message{AgentID: agentID, MsgType: kind, Data: data}, nil
}

// agentBandwidth reads the agent's current bandwidth. It is nil when the
// identity row cannot be read.
func (s *Synchronizer) agentBandwidth(ctx context.Context) *float64 {
	identity, err := s.store.GetIdentity(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Agent bandwidth unavailable")

		return nil
	}

	bw := identity.Bandwidth

	return &bw
}

func (s *Synchronizer) setState(state State) {
	if s.state != state {
		s.logger.Debug().Str("from", s.state.String()).Str("to", state.String()).Msg("Connection state changed")
	}

	s.state = state

	switch state {
	case Disconnected:
		metrics.ConnectionState.Set(metrics.StateDisconnected)
	case Connecting:
		metrics.ConnectionState.Set(metrics.StateConnecting)
	case Connected:
		metrics.ConnectionState.Set(metrics.StateConnected)
	}
}
