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
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/mdlayher/arp"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

const defaultProbeTimeout = 3 * time.Second

// arpClient is the subset of *arp.Client used by ARPProber.
type arpClient interface {
	Resolve(ip netip.Addr) (net.HardwareAddr, error)
	SetDeadline(t time.Time) error
	Close() error
}

// ARPProber probes addresses with ARP requests. Every in-flight probe holds
// its own client, so concurrent probes on one interface never consume each
// other's replies. Idle clients are kept per interface and reused.
type ARPProber struct {
	timeout time.Duration
	logger  logger.Logger
	dial    func(iface string) (arpClient, error)

	mu     sync.Mutex
	idle   map[string][]arpClient
	closed bool
}

var _ Prober = (*ARPProber)(nil)

// NewARPProber returns a prober that waits up to timeout for each reply.
func NewARPProber(timeout time.Duration, log logger.Logger) *ARPProber {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	return &ARPProber{
		timeout: timeout,
		logger:  log,
		dial:    dialARP,
		idle:    make(map[string][]arpClient),
	}
}

func dialARP(name string) (arpClient, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInterfaceNotFound, name, err)
	}

	c, err := arp.Dial(ifi)
	if err != nil {
		return nil, fmt.Errorf("arp dial %s: %w", name, err)
	}

	return c, nil
}

// Probe implements Prober.
func (p *ARPProber) Probe(ctx context.Context, iface string, ip netip.Addr) (netip.Addr, net.HardwareAddr, error) {
	c, err := p.acquire(iface)
	if err != nil {
		return netip.Addr{}, nil, err
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.SetDeadline(deadline); err != nil {
		_ = c.Close()

		return netip.Addr{}, nil, err
	}

	mac, err := c.Resolve(ip)
	if err != nil {
		if isTimeout(err) {
			p.release(iface, c)

			return netip.Addr{}, nil, fmt.Errorf("%w: %s", models.ErrProbeTimeout, ip)
		}

		_ = c.Close()

		return netip.Addr{}, nil, err
	}

	p.release(iface, c)

	return ip, mac, nil
}

func (p *ARPProber) acquire(iface string) (arpClient, error) {
	p.mu.Lock()

	if n := len(p.idle[iface]); n > 0 {
		c := p.idle[iface][n-1]
		p.idle[iface] = p.idle[iface][:n-1]
		p.mu.Unlock()

		return c, nil
	}

	p.mu.Unlock()

	return p.dial(iface)
}

func (p *ARPProber) release(iface string, c arpClient) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = c.Close()

		return
	}

	p.idle[iface] = append(p.idle[iface], c)
}

// Close releases every idle client. Clients still in use are closed when
// their probe returns.
func (p *ARPProber) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	var errs []error

	for iface, clients := range p.idle {
		for _, c := range clients {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		delete(p.idle, iface)
	}

	return errors.Join(errs...)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
