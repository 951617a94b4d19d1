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
	"net/netip"
	"sort"
	"sync"
)

const workQueueMultiplier = 2

// sweepRange feeds [first, last] to up to concurrency workers running probe
// and returns the ports for which probe reported true, ascending.
func sweepRange(ctx context.Context, first, last, concurrency int, probe func(context.Context, int) bool) ([]int, error) {
	workers := concurrency
	if n := last - first + 1; n < workers {
		workers = n
	}

	workCh := make(chan int, workers*workQueueMultiplier)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		open []int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for port := range workCh {
				if ctx.Err() != nil {
					continue
				}

				if probe(ctx, port) {
					mu.Lock()
					open = append(open, port)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for port := first; port <= last; port++ {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- port:
		}
	}

	close(workCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Ints(open)

	return open, nil
}

func validateRange(first, last int) error {
	if first < 1 || last > 65535 || first > last {
		return fmt.Errorf("%w: %d-%d", ErrInvalidPortRange, first, last)
	}

	return nil
}

// HostAddresses enumerates the host addresses of an IPv4 prefix, skipping the
// network and broadcast addresses and exclude. The prefix may carry host
// bits, e.g. 10.0.0.5/24.
func HostAddresses(prefix netip.Prefix, exclude netip.Addr) ([]netip.Addr, error) {
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv4Prefix, prefix)
	}

	network := prefix.Masked()
	broadcast := lastAddr(network)

	var addrs []netip.Addr

	for a := network.Addr().Next(); a.IsValid() && a.Less(broadcast); a = a.Next() {
		if a == exclude {
			continue
		}

		addrs = append(addrs, a)
	}

	return addrs, nil
}

// lastAddr returns the highest address of an IPv4 prefix.
func lastAddr(p netip.Prefix) netip.Addr {
	b := p.Masked().Addr().As4()
	hostBits := 32 - p.Bits()

	for i := 3; i >= 0 && hostBits > 0; i-- {
		n := hostBits
		if n > 8 {
			n = 8
		}

		b[i] |= byte(0xff >> (8 - n))
		hostBits -= n
	}

	return netip.AddrFrom4(b)
}
