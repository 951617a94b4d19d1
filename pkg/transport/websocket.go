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
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

const closeGrace = time.Second

// WebSocketDialer connects to a ws:// or wss:// collector endpoint and
// presents the agent identity as handshake headers.
type WebSocketDialer struct {
	url    string
	opts   Options
	logger logger.Logger
}

var _ Dialer = (*WebSocketDialer)(nil)

// NewWebSocketDialer builds a dialer for url.
func NewWebSocketDialer(url string, opts Options, log logger.Logger) *WebSocketDialer {
	return &WebSocketDialer{url: url, opts: opts, logger: log}
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, identity *models.AgentIdentity) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.opts.HandshakeTimeout,
		TLSClientConfig:  tlsConfig(&d.opts),
	}

	ws, resp, err := dialer.DialContext(ctx, d.url, identity.Headers())
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial %s: %s: %w", models.ErrTransport, d.url, resp.Status, err)
		}

		return nil, fmt.Errorf("%w: dial %s: %w", models.ErrTransport, d.url, err)
	}

	c := &wsConn{
		ws:           ws,
		writeTimeout: d.opts.WriteTimeout,
		done:         make(chan struct{}),
		logger:       d.logger,
	}

	go c.readLoop()

	return c, nil
}

type wsConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	logger       logger.Logger

	writeMu sync.Mutex

	done      chan struct{}
	readErr   error
	closeOnce sync.Once
}

// readLoop discards inbound frames and closes done when the peer goes away.
func (c *wsConn) readLoop() {
	defer close(c.done)

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Msg("WebSocket receive failed")
			}

			c.readErr = err

			return
		}
	}
}

func (c *wsConn) Send(ctx context.Context, msg *models.Message) error {
	select {
	case <-c.done:
		return fmt.Errorf("%w: %w: %w", models.ErrTransport, ErrConnClosed, c.readErr)
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.MsgType, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %w", models.ErrTransport, err)
	}

	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: send %s: %w", models.ErrTransport, msg.MsgType, err)
	}

	return nil
}

// deadline is the earlier of the context deadline and the write timeout.
func (c *wsConn) deadline(ctx context.Context) time.Time {
	var d time.Time

	if c.writeTimeout > 0 {
		d = time.Now().Add(c.writeTimeout)
	}

	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}

	return d
}

func (c *wsConn) Done() <-chan struct{} {
	return c.done
}

func (c *wsConn) Close() error {
	var err error

	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace))
		c.writeMu.Unlock()

		err = c.ws.Close()
	})

	return err
}
