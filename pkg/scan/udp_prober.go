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

package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/carverauto/lanwatch/pkg/logger"
)

const (
	defaultUDPTimeout     = 2 * time.Second
	defaultUDPConcurrency = 8
)

// UDPProber sends an empty datagram to each port and waits for a reply.
// A reply marks the port open. An ICMP port-unreachable surfaces as
// ECONNREFUSED and marks it closed; silence is reported as not open.
type UDPProber struct {
	timeout     time.Duration
	concurrency int
	logger      logger.Logger
}

var _ PortScanner = (*UDPProber)(nil)

func NewUDPProber(timeout time.Duration, concurrency int, log logger.Logger) *UDPProber {
	if timeout == 0 {
		timeout = defaultUDPTimeout
	}

	if concurrency == 0 {
		concurrency = defaultUDPConcurrency
	}

	return &UDPProber{
		timeout:     timeout,
		concurrency: concurrency,
		logger:      log,
	}
}

// ScanRange implements PortScanner.
func (p *UDPProber) ScanRange(ctx context.Context, host string, first, last int) ([]int, error) {
	if err := validateRange(first, last); err != nil {
		return nil, err
	}

	if _, err := netip.ParseAddr(host); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}

	return sweepRange(ctx, first, last, p.concurrency, func(ctx context.Context, port int) bool {
		open, err := p.checkPort(ctx, host, port)
		if err != nil && !errors.Is(err, errConnectionRefused) {
			p.logger.Trace().Err(err).Str("host", host).Int("port", port).Msg("udp probe failed")
		}

		return open
	})
}

func (p *UDPProber) checkPort(ctx context.Context, host string, port int) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(probeCtx, "udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false, err
	}
	defer func() { _ = conn.Close() }()

	deadline, _ := probeCtx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return false, err
	}

	if _, err := conn.Write([]byte{}); err != nil {
		return false, classifyUDPError(err)
	}

	buf := make([]byte, 512)

	if _, err := conn.Read(buf); err != nil {
		return false, classifyUDPError(err)
	}

	return true, nil
}

func classifyUDPError(err error) error {
	if errors.Is(err, unix.ECONNREFUSED) {
		return errConnectionRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}

	return err
}
