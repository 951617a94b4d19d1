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
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/carverauto/lanwatch/pkg/logger"
)

const (
	defaultTCPTimeout     = time.Second
	defaultTCPConcurrency = 64
)

// TCPSweeper is a connect scanner. Ports of a range are handed to a fixed
// pool of workers; a completed handshake marks the port open.
type TCPSweeper struct {
	timeout     time.Duration
	concurrency int
	logger      logger.Logger
}

var _ PortScanner = (*TCPSweeper)(nil)

func NewTCPSweeper(timeout time.Duration, concurrency int, log logger.Logger) *TCPSweeper {
	if timeout == 0 {
		timeout = defaultTCPTimeout
	}

	if concurrency == 0 {
		concurrency = defaultTCPConcurrency
	}

	return &TCPSweeper{
		timeout:     timeout,
		concurrency: concurrency,
		logger:      log,
	}
}

// ScanRange implements PortScanner.
func (s *TCPSweeper) ScanRange(ctx context.Context, host string, first, last int) ([]int, error) {
	if err := validateRange(first, last); err != nil {
		return nil, err
	}

	if _, err := netip.ParseAddr(host); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}

	return sweepRange(ctx, first, last, s.concurrency, func(ctx context.Context, port int) bool {
		return s.checkPort(ctx, host, port)
	})
}

func (s *TCPSweeper) checkPort(ctx context.Context, host string, port int) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(probeCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}

	if err := conn.Close(); err != nil {
		s.logger.Debug().Err(err).Int("port", port).Msg("failed to close connection")
	}

	return true
}
