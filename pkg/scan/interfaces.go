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

// Package scan provides TCP and UDP port probe primitives and address helpers.
package scan

import "context"

//go:generate mockgen -destination=mock_scan.go -package=scan github.com/carverauto/lanwatch/pkg/scan PortScanner

// PortScanner probes an inclusive port range on one host and returns the open
// ports in ascending order. Closed and unanswered ports are not errors.
type PortScanner interface {
	ScanRange(ctx context.Context, host string, first, last int) ([]int, error)
}
