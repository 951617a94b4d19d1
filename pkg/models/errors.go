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

package models

import "errors"

// Failure classes shared by every component. Callers wrap these with %w and
// test them with errors.Is.
var (
	// ErrProbeTimeout means no answer arrived within the probe bound. It is
	// retried on the next cycle and never surfaced.
	ErrProbeTimeout = errors.New("probe timeout")
	// ErrStore is a failed read or write against the state store.
	ErrStore = errors.New("store error")
	// ErrMalformedInput is bad JSON or missing fields in external probe output.
	ErrMalformedInput = errors.New("malformed input")
	// ErrConfiguration is fatal, and only raised before any worker starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport is a connect, send or receive failure on the outbound link.
	ErrTransport = errors.New("transport error")
)
