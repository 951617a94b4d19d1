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

package transport

import (
	"context"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_transport.go -package=transport github.com/carverauto/lanwatch/pkg/transport Dialer,Conn

// Dialer opens an authenticated connection to the collector.
type Dialer interface {
	Dial(ctx context.Context, identity *models.AgentIdentity) (Conn, error)
}

// Conn is one live connection. A Conn is not reused after Send fails.
type Conn interface {
	Send(ctx context.Context, msg *models.Message) error
	// Done is closed once the peer is gone.
	Done() <-chan struct{}
	Close() error
}
