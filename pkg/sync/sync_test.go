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

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/transport"
)

var (
	errSend = errors.New("broken pipe")
	errDial = errors.New("connection refused")
)

func device(mac string, seen, tcp, udp int64) models.Device {
	return models.Device{MAC: mac, IP: "10.0.0.2", LastUpdate: seen, LastTCPUpdate: tcp, LastUDPUpdate: udp}
}

func TestDiffDetectorDevices(t *testing.T) {
	d := NewDiffDetector()

	first := d.Devices([]models.Device{device("a", 1, 0, 0), device("b", 1, 0, 0)})
	assert.Len(t, first, 2)

	assert.Empty(t, d.Devices([]models.Device{device("a", 1, 0, 0), device("b", 1, 0, 0)}))

	tests := []struct {
		name string
		dev  models.Device
	}{
		{"last seen", device("a", 2, 0, 0)},
		{"tcp scan", device("a", 2, 5, 0)},
		{"udp scan", device("a", 2, 5, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := d.Devices([]models.Device{tt.dev, device("b", 1, 0, 0)})
			require.Len(t, delta, 1)
			assert.Equal(t, tt.dev, delta["a"])
		})
	}
}

func TestDiffDetectorIgnoresOtherFields(t *testing.T) {
	d := NewDiffDetector()
	d.Devices([]models.Device{device("a", 1, 0, 0)})

	changed := device("a", 1, 0, 0)
	changed.Bandwidth = 99

	assert.Empty(t, d.Devices([]models.Device{changed}))
}

func TestDiffDetectorInterfaces(t *testing.T) {
	d := NewDiffDetector()

	ifaces := []models.NetworkInterface{{Name: "eth0", LastUpdate: 1}, {Name: "eth1", LastUpdate: 1}}
	assert.Len(t, d.Interfaces(ifaces), 2)
	assert.Empty(t, d.Interfaces(ifaces))

	ifaces[1].LastUpdate = 2
	delta := d.Interfaces(ifaces)
	require.Len(t, delta, 1)
	assert.Contains(t, delta, "eth1")
}

type fixture struct {
	sync   *Synchronizer
	store  *db.MockService
	dialer *transport.MockDialer
	conn   *transport.MockConn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		store:  db.NewMockService(ctrl),
		dialer: transport.NewMockDialer(ctrl),
		conn:   transport.NewMockConn(ctrl),
	}

	cfg := &config.SyncConfig{
		RetryDelay:   config.Duration(10 * time.Millisecond),
		PassInterval: config.Duration(10 * time.Millisecond),
	}

	f.sync = NewSynchronizer(f.store, f.dialer, cfg, logger.NewTestLogger())

	return f
}

func TestPassSendsKindsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var sent []*models.Message

	record := func(_ context.Context, m *models.Message) error {
		sent = append(sent, m)
		return nil
	}

	gomock.InOrder(
		f.store.EXPECT().ListDevices(ctx).Return([]models.Device{device("a", 1, 0, 0)}, nil),
		f.store.EXPECT().GetIdentity(ctx).Return(&models.AgentIdentity{ID: "agent-1", Bandwidth: 42.5}, nil),
		f.conn.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(record),
		f.store.EXPECT().DrainLinkRecords(ctx).Return([]models.LinkRecord{{Status: "up"}}, nil),
		f.conn.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(record),
		f.store.EXPECT().DrainIDSRecords(ctx).Return(nil, nil),
		f.store.EXPECT().ListInterfaces(ctx).Return([]models.NetworkInterface{{Name: "eth0", LastUpdate: 3}}, nil),
		f.conn.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(record),
	)

	require.NoError(t, f.sync.Pass(ctx, f.conn, "agent-1"))

	require.Len(t, sent, 3)
	assert.Equal(t, models.MsgDevices, sent[0].MsgType)
	assert.Equal(t, "agent-1", sent[0].AgentID)
	require.NotNil(t, sent[0].AgentBandwidth)
	assert.InDelta(t, 42.5, *sent[0].AgentBandwidth, 0)
	assert.Contains(t, sent[0].Data, "a")

	assert.Equal(t, models.MsgLinks, sent[1].MsgType)
	assert.Nil(t, sent[1].AgentBandwidth)

	assert.Equal(t, models.MsgInterfaces, sent[2].MsgType)
	assert.Contains(t, sent[2].Data, "eth0")
}

func TestPassUnchangedDevicesNotResent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	devices := []models.Device{device("a", 1, 0, 0)}

	f.store.EXPECT().ListDevices(ctx).Return(devices, nil).Times(2)
	f.store.EXPECT().GetIdentity(ctx).Return(&models.AgentIdentity{ID: "agent-1"}, nil)
	f.store.EXPECT().DrainLinkRecords(ctx).Return(nil, nil).Times(2)
	f.store.EXPECT().DrainIDSRecords(ctx).Return(nil, nil).Times(2)
	f.store.EXPECT().ListInterfaces(ctx).Return(nil, nil).Times(2)
	f.conn.EXPECT().Send(ctx, gomock.Any()).Return(nil).Times(1)

	require.NoError(t, f.sync.Pass(ctx, f.conn, "agent-1"))
	require.NoError(t, f.sync.Pass(ctx, f.conn, "agent-1"))
}

func TestPassSendErrorStopsRemainingKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.EXPECT().ListDevices(ctx).Return([]models.Device{device("a", 1, 0, 0)}, nil)
	f.store.EXPECT().GetIdentity(ctx).Return(&models.AgentIdentity{ID: "agent-1"}, nil)
	f.store.EXPECT().DrainLinkRecords(ctx).Return([]models.LinkRecord{{Status: "up"}}, nil)

	gomock.InOrder(
		f.conn.EXPECT().Send(ctx, gomock.Any()).Return(nil),
		f.conn.EXPECT().Send(ctx, gomock.Any()).Return(errSend),
	)

	// DrainIDSRecords and ListInterfaces have no expectations: reaching
	// them fails the test.
	err := f.sync.Pass(ctx, f.conn, "agent-1")
	require.ErrorIs(t, err, errSend)

	assert.Contains(t, f.sync.diff.devices, "a")
	assert.Empty(t, f.sync.diff.ifaces)
}

func TestPassStoreErrorSkipsOnlyThatKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.EXPECT().ListDevices(ctx).Return(nil, models.ErrStore)
	f.store.EXPECT().DrainLinkRecords(ctx).Return(nil, models.ErrStore)
	f.store.EXPECT().DrainIDSRecords(ctx).Return([]models.IDSRecord{{IP: "10.0.0.9"}}, nil)
	f.store.EXPECT().ListInterfaces(ctx).Return(nil, nil)
	f.conn.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, m *models.Message) error {
		assert.Equal(t, models.MsgIDS, m.MsgType)
		return nil
	})

	require.NoError(t, f.sync.Pass(ctx, f.conn, "agent-1"))
}

func TestRunReconnectsAfterDialFailure(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identity := &models.AgentIdentity{ID: "agent-1"}

	f.store.EXPECT().GetIdentity(gomock.Any()).Return(identity, nil).AnyTimes()

	gomock.InOrder(
		f.dialer.EXPECT().Dial(gomock.Any(), identity).Return(nil, errDial),
		f.dialer.EXPECT().Dial(gomock.Any(), identity).Return(f.conn, nil),
	)

	f.store.EXPECT().ListDevices(gomock.Any()).Return([]models.Device{device("a", 1, 0, 0)}, nil).AnyTimes()
	f.store.EXPECT().DrainLinkRecords(gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().DrainIDSRecords(gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().ListInterfaces(gomock.Any()).Return(nil, nil).AnyTimes()

	f.conn.EXPECT().Done().Return(make(chan struct{})).AnyTimes()
	f.conn.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *models.Message) error {
		cancel()
		return nil
	})
	f.conn.EXPECT().Close().Return(nil)

	require.NoError(t, f.sync.Run(ctx))
	assert.Equal(t, Disconnected, f.sync.state)
}

func TestSessionEndsWhenPeerGoes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gone := make(chan struct{})
	close(gone)

	f.store.EXPECT().GetIdentity(ctx).Return(&models.AgentIdentity{ID: "agent-1"}, nil)
	f.dialer.EXPECT().Dial(ctx, gomock.Any()).Return(f.conn, nil)
	f.store.EXPECT().ListDevices(ctx).Return(nil, nil)
	f.store.EXPECT().DrainLinkRecords(ctx).Return(nil, nil)
	f.store.EXPECT().DrainIDSRecords(ctx).Return(nil, nil)
	f.store.EXPECT().ListInterfaces(ctx).Return(nil, nil)
	f.conn.EXPECT().Done().Return(gone)
	f.conn.EXPECT().Close().Return(nil)

	err := f.sync.session(ctx)
	require.ErrorIs(t, err, models.ErrTransport)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "state(7)", State(7).String())
}
