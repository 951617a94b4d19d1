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

package discovery

import (
	"context"
	"net"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		want    int
		wantErr error
	}{
		{name: "slash 24", cidr: "10.0.0.5/24", want: 253},
		{name: "slash 29", cidr: "10.0.0.5/29", want: 5},
		{name: "slash 30 point to point", cidr: "10.0.0.5/30", wantErr: ErrUnsupportedPrefix},
		{name: "slash 31", cidr: "10.0.0.5/31", wantErr: ErrUnsupportedPrefix},
		{name: "slash 32", cidr: "10.0.0.5/32", wantErr: ErrUnsupportedPrefix},
		{name: "slash 23 too large", cidr: "10.0.0.5/23", wantErr: ErrUnsupportedPrefix},
		{name: "ipv6", cidr: "fd00::5/120", wantErr: ErrUnsupportedPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addrs, err := Plan(models.LocalNetwork{Iface: "eth0", CIDR: tt.cidr})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, addrs)

				return
			}

			require.NoError(t, err)
			assert.Len(t, addrs, tt.want)
			assert.NotContains(t, addrs, netip.MustParsePrefix(tt.cidr).Addr())
		})
	}

	_, err := Plan(models.LocalNetwork{Iface: "eth0", CIDR: "garbage"})
	assert.Error(t, err)
}

// countingProber records every probed address and never gets a reply.
type countingProber struct {
	mu     sync.Mutex
	probed map[string]int
}

func (p *countingProber) Probe(_ context.Context, iface string, ip netip.Addr) (netip.Addr, net.HardwareAddr, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.probed[iface+"/"+ip.String()]++

	return netip.Addr{}, nil, models.ErrProbeTimeout
}

func (p *countingProber) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.probed)
}

func TestRunStartsOneTaskPerAddress(t *testing.T) {
	prober := &countingProber{probed: make(map[string]int)}
	cfg := &config.DiscoveryConfig{Sleep: config.Duration(time.Hour)}

	s := NewScanner(nil, prober, nil, cfg, logger.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- s.Run(ctx, []models.LocalNetwork{
			{Iface: "eth0", CIDR: "10.0.0.5/24"},
			{Iface: "ptp0", CIDR: "10.1.0.5/30"},
		})
	}()

	require.Eventually(t, func() bool { return prober.count() == 253 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	for key := range prober.probed {
		assert.Contains(t, key, "eth0/")
	}
}

func TestRunWithOnlyRejectedNetworks(t *testing.T) {
	prober := &countingProber{probed: make(map[string]int)}
	s := NewScanner(nil, prober, nil, nil, logger.NewTestLogger())

	err := s.Run(context.Background(), []models.LocalNetwork{{Iface: "ptp0", CIDR: "10.0.0.5/30"}})
	require.NoError(t, err)
	assert.Zero(t, prober.count())
}

func TestPartitionHonoursMaxTasks(t *testing.T) {
	addrs, err := Plan(models.LocalNetwork{Iface: "eth0", CIDR: "10.0.0.5/24"})
	require.NoError(t, err)

	s := NewScanner(nil, nil, nil, &config.DiscoveryConfig{MaxTasks: 4}, logger.NewTestLogger())
	pools := s.partition("eth0", addrs)
	require.Len(t, pools, 4)

	total := 0
	for _, p := range pools {
		total += len(p)
	}

	assert.Equal(t, 253, total)

	s = NewScanner(nil, nil, nil, nil, logger.NewTestLogger())
	assert.Len(t, s.partition("eth0", addrs), 253)
}

func TestTaskStepUpsertsAndResolvesHostnameOnce(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := db.NewMockService(ctrl)
	prober := NewMockProber(ctrl)
	neighbors := NewMockNeighborTable(ctrl)

	addr := netip.MustParseAddr("10.0.0.7")
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x07}

	prober.EXPECT().Probe(gomock.Any(), "eth0", addr).Return(addr, mac, nil).Times(2)
	neighbors.EXPECT().Hostname(gomock.Any(), mac).Return("printer.lan", nil).Times(1)

	var stored []*models.DeviceUpdate

	store.EXPECT().UpsertDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.DeviceUpdate) error {
			stored = append(stored, u)
			return nil
		}).Times(2)

	s := NewScanner(store, prober, neighbors, nil, logger.NewTestLogger())
	tk := &task{iface: "eth0", addr: addr}
	ctx := context.Background()

	for round := 0; round < 2; round++ {
		s.step(ctx, tk)
		assert.Equal(t, stateUpsert, tk.state)

		s.step(ctx, tk)
		assert.Equal(t, stateSleep, tk.state)

		tk.state = stateProbe
	}

	require.Len(t, stored, 2)
	assert.Equal(t, "aa:bb:cc:00:00:07", stored[0].MAC)
	assert.Equal(t, "10.0.0.7", stored[0].IP)
	assert.Equal(t, "printer.lan", stored[1].Hostname)
	assert.Equal(t, "eth0", stored[1].Iface)
	assert.Positive(t, stored[1].LastUpdate)
}

func TestTaskStepTimeoutSkipsUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := db.NewMockService(ctrl)
	prober := NewMockProber(ctrl)

	addr := netip.MustParseAddr("10.0.0.9")
	prober.EXPECT().Probe(gomock.Any(), "eth0", addr).Return(netip.Addr{}, nil, models.ErrProbeTimeout)

	s := NewScanner(store, prober, nil, nil, logger.NewTestLogger())
	tk := &task{iface: "eth0", addr: addr}

	s.step(context.Background(), tk)
	assert.Equal(t, stateSleep, tk.state)
}

func TestTaskStepNeighbourFailureLeavesHostnameEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := db.NewMockService(ctrl)
	prober := NewMockProber(ctrl)
	neighbors := NewMockNeighborTable(ctrl)

	addr := netip.MustParseAddr("10.0.0.10")
	mac := net.HardwareAddr{0, 1, 2, 3, 4, 5}

	prober.EXPECT().Probe(gomock.Any(), "eth0", addr).Return(addr, mac, nil)
	neighbors.EXPECT().Hostname(gomock.Any(), mac).Return("", os.ErrPermission)
	store.EXPECT().UpsertDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.DeviceUpdate) error {
			assert.Empty(t, u.Hostname)
			return nil
		})

	s := NewScanner(store, prober, neighbors, nil, logger.NewTestLogger())
	tk := &task{iface: "eth0", addr: addr}

	s.step(context.Background(), tk)
	s.step(context.Background(), tk)
	assert.Equal(t, stateSleep, tk.state)
}

type fakeARPClient struct {
	mac    net.HardwareAddr
	err    error
	closed atomic.Bool
}

func (c *fakeARPClient) Resolve(netip.Addr) (net.HardwareAddr, error) { return c.mac, c.err }
func (*fakeARPClient) SetDeadline(time.Time) error { return nil }
func (c *fakeARPClient) Close() error {
	c.closed.Store(true)
	return nil
}

func TestARPProberReusesClients(t *testing.T) {
	var dials atomic.Int32

	client := &fakeARPClient{mac: net.HardwareAddr{1, 2, 3, 4, 5, 6}}

	p := NewARPProber(time.Second, logger.NewTestLogger())
	p.dial = func(string) (arpClient, error) {
		dials.Add(1)
		return client, nil
	}

	addr := netip.MustParseAddr("10.0.0.2")

	for i := 0; i < 3; i++ {
		ip, mac, err := p.Probe(context.Background(), "eth0", addr)
		require.NoError(t, err)
		assert.Equal(t, addr, ip)
		assert.Equal(t, client.mac, mac)
	}

	assert.Equal(t, int32(1), dials.Load())

	require.NoError(t, p.Close())
	assert.True(t, client.closed.Load())
}

func TestARPProberTimeout(t *testing.T) {
	client := &fakeARPClient{err: os.ErrDeadlineExceeded}

	p := NewARPProber(time.Second, logger.NewTestLogger())
	p.dial = func(string) (arpClient, error) { return client, nil }

	_, _, err := p.Probe(context.Background(), "eth0", netip.MustParseAddr("10.0.0.3"))
	require.ErrorIs(t, err, models.ErrProbeTimeout)
	assert.False(t, client.closed.Load(), "timed out client is kept for reuse")
}

func TestNetlinkNeighborTable(t *testing.T) {
	mac := net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0, 1}

	table := NewNetlinkNeighborTable()
	table.list = func() ([]netlink.Neigh, error) {
		return []netlink.Neigh{
			{IP: net.ParseIP("192.0.2.10"), HardwareAddr: net.HardwareAddr{1, 1, 1, 1, 1, 1}},
			{IP: net.ParseIP("192.0.2.11"), HardwareAddr: mac},
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	name, err := table.Hostname(ctx, mac)
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	name, err = table.Hostname(ctx, net.HardwareAddr{9, 9, 9, 9, 9, 9})
	require.NoError(t, err)
	assert.Empty(t, name)
}
