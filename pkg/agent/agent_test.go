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

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

var errWorker = errors.New("worker failed")

func stat(name, mac string, flags []string, addrs ...string) psnet.InterfaceStat {
	st := psnet.InterfaceStat{Name: name, HardwareAddr: mac, Flags: flags}
	for _, a := range addrs {
		st.Addrs = append(st.Addrs, psnet.InterfaceAddr{Addr: a})
	}

	return st
}

func testInterfaces() []psnet.InterfaceStat {
	return []psnet.InterfaceStat{
		stat("lo", "", []string{"up", "loopback"}, "127.0.0.1/8", "::1/128"),
		stat("eth0", "aa:bb:cc:dd:ee:01", []string{"up", "broadcast"}, "192.168.1.10/24", "fe80::1/64"),
		stat("eth1", "aa:bb:cc:dd:ee:02", []string{"up"}, "10.0.0.5/29", "10.0.1.5/24"),
		stat("wg0", "", []string{"up", "pointtopoint"}, "10.9.0.1/24"),
		stat("tun0", "", []string{"up"}, "10.8.0.1/32"),
		stat("eth2", "aa:bb:cc:dd:ee:03", []string{"up"}, "fe80::2/64"),
	}
}

func TestResolveNetworks(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		want    []models.LocalNetwork
		wantErr error
	}{
		{name: "none", names: nil},
		{
			name:  "single",
			names: []string{" eth0 "},
			want:  []models.LocalNetwork{{Iface: "eth0", CIDR: "192.168.1.10/24"}},
		},
		{
			name:  "multiple addresses",
			names: []string{"eth1"},
			want: []models.LocalNetwork{
				{Iface: "eth1", CIDR: "10.0.0.5/29"},
				{Iface: "eth1", CIDR: "10.0.1.5/24"},
			},
		},
		{name: "unknown", names: []string{"eth9"}, wantErr: ErrInterfaceNotFound},
		{name: "point-to-point flag", names: []string{"wg0"}, wantErr: ErrPointToPoint},
		{name: "host prefix", names: []string{"tun0"}, wantErr: ErrPointToPoint},
		{name: "ipv6 only", names: []string{"eth2"}, wantErr: ErrNoIPv4Address},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveNetworks(tt.names, testInterfaces())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, models.ErrConfiguration)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterfaceNames(t *testing.T) {
	names := InterfaceNames([]models.LocalNetwork{
		{Iface: "eth1", CIDR: "10.0.0.5/29"},
		{Iface: "eth1", CIDR: "10.0.1.5/24"},
		{Iface: "eth0", CIDR: "192.168.1.10/24"},
	})

	assert.Equal(t, []string{"eth1", "eth0"}, names)
	assert.Empty(t, InterfaceNames(nil))
}

func TestPickAddress(t *testing.T) {
	ip, mac := pickAddress(testInterfaces(), "10.0.1.5")
	assert.Equal(t, "10.0.1.5", ip)
	assert.Equal(t, "aa:bb:cc:dd:ee:02", mac)

	ip, mac = pickAddress(testInterfaces(), "127.0.1.1")
	assert.Equal(t, "192.168.1.10", ip)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", mac)

	ip, _ = pickAddress(nil, "")
	assert.Empty(t, ip)
}

func TestAgentID(t *testing.T) {
	// sha1("gateway")
	assert.Equal(t, "8a6b3c5e6ba4da6ebfdf08b068ca74f7d99ed161", AgentID("gateway", false))
	assert.Len(t, AgentID("gateway", true), 36)
	assert.NotEqual(t, AgentID("gateway", true), AgentID("gateway", true))
}

func TestBootstrapIdentityCreatesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	host := NewMockHost(ctrl)
	ctx := context.Background()

	networks := []models.LocalNetwork{{Iface: "eth0", CIDR: "192.168.1.10/24"}}

	store.EXPECT().GetIdentity(ctx).Return(nil, db.ErrIdentityNotFound)
	host.EXPECT().Facts(ctx).Return(&HostFacts{Hostname: "gateway", IP: "192.168.1.10", MAC: "aa:bb:cc:dd:ee:01"}, nil)
	store.EXPECT().CreateIdentity(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, id *models.AgentIdentity) error {
		assert.Equal(t, AgentID("gateway", false), id.ID)
		assert.Equal(t, "north", id.SubstationName)
		assert.Equal(t, id.LastUpdate, id.RegistrationTS)
		assert.Zero(t, id.Bandwidth)

		var ifaces map[string]string
		require.NoError(t, json.Unmarshal([]byte(id.Ifaces), &ifaces))
		assert.Equal(t, map[string]string{"eth0": "192.168.1.10/24"}, ifaces)

		return nil
	})

	id, err := BootstrapIdentity(ctx, store, host, networks, IdentityOptions{SubstationName: "north"}, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10", id.IP)
}

func TestBootstrapIdentityKeepsExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	ctx := context.Background()

	existing := &models.AgentIdentity{ID: "kept"}
	store.EXPECT().GetIdentity(ctx).Return(existing, nil)

	id, err := BootstrapIdentity(ctx, store, NewMockHost(ctrl), nil, IdentityOptions{UseUUID: true}, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Same(t, existing, id)
}

func TestBootstrapIdentityLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)
	host := NewMockHost(ctrl)
	ctx := context.Background()

	winner := &models.AgentIdentity{ID: "winner"}

	gomock.InOrder(
		store.EXPECT().GetIdentity(ctx).Return(nil, db.ErrIdentityNotFound),
		store.EXPECT().GetIdentity(ctx).Return(winner, nil),
	)
	host.EXPECT().Facts(ctx).Return(&HostFacts{Hostname: "gateway"}, nil)
	store.EXPECT().CreateIdentity(ctx, gomock.Any()).Return(db.ErrIdentityExists)

	id, err := BootstrapIdentity(ctx, store, host, nil, IdentityOptions{}, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Same(t, winner, id)
}

func testConfig(t *testing.T) *config.AgentConfig {
	t.Helper()

	cfg := config.DefaultAgentConfig()
	cfg.DBFilePath = filepath.Join(t.TempDir(), "agent.db")
	cfg.ServerURL = "ws://127.0.0.1:1/agent"

	return cfg
}

func TestBuildWithoutInterfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := NewMockHost(ctrl)
	ctx := context.Background()
	cfg := testConfig(t)

	store, err := db.New(ctx, cfg.DBFilePath, db.Options{ResetOnStart: true}, logger.NewTestLogger())
	require.NoError(t, err)

	host.EXPECT().Interfaces(ctx).Return(testInterfaces(), nil)
	host.EXPECT().Facts(ctx).Return(&HostFacts{Hostname: "gateway", IP: "192.168.1.10", MAC: "aa:bb:cc:dd:ee:01"}, nil)

	a, err := build(ctx, cfg, store, host, logger.NewTestLogger())
	require.NoError(t, err)

	defer func() { require.NoError(t, a.Close()) }()

	assert.Equal(t, []string{"telemetry", "external", "sync"}, a.Workers())
	assert.Equal(t, AgentID("gateway", false), a.Identity().ID)
}

func TestBuildWithInterfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := NewMockHost(ctrl)
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.NetInterfaces = []string{"eth0"}
	cfg.Metrics.ListenAddr = "127.0.0.1:0"

	store, err := db.New(ctx, cfg.DBFilePath, db.Options{}, logger.NewTestLogger())
	require.NoError(t, err)

	host.EXPECT().Interfaces(ctx).Return(testInterfaces(), nil)
	host.EXPECT().Facts(ctx).Return(&HostFacts{Hostname: "gateway"}, nil)

	a, err := build(ctx, cfg, store, host, logger.NewTestLogger())
	require.NoError(t, err)

	defer func() { require.NoError(t, a.Close()) }()

	assert.Equal(t, []string{"discovery", "portscan", "telemetry", "external", "sync", "metrics"}, a.Workers())
}

func TestBuildRejectsBadInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := NewMockHost(ctrl)
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.NetInterfaces = []string{"tun0"}

	host.EXPECT().Interfaces(ctx).Return(testInterfaces(), nil)

	_, err := build(ctx, cfg, db.NewMockService(ctrl), host, logger.NewTestLogger())
	require.ErrorIs(t, err, models.ErrConfiguration)
}

func TestRunStopsOnFirstWorkerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)

	a := &Agent{
		store:    store,
		identity: &models.AgentIdentity{ID: "agent-1"},
		logger:   logger.NewTestLogger(),
	}

	a.add("blocking", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	a.add("failing", func(context.Context) error {
		return errWorker
	})

	err := a.Run(context.Background())
	require.ErrorIs(t, err, errWorker)
	assert.Contains(t, err.Error(), "failing")

	store.EXPECT().Close().Return(nil)
	require.NoError(t, a.Close())
}

func TestMetricsFailureDoesNotStopWorkers(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	a := &Agent{
		identity: &models.AgentIdentity{ID: "agent-1"},
		logger:   logger.NewTestLogger(),
	}

	stopped := make(chan struct{})

	a.add("discovery", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)

		return nil
	})
	a.add("metrics", serveMetrics(ln.Addr().String(), logger.NewTestLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("agent stopped after metrics bind failure: %v", err)
	case <-stopped:
		t.Fatal("producer cancelled after metrics bind failure")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not stop after cancel")
	}
}
