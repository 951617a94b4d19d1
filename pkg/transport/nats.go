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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

// NATSDialer publishes agent messages to JetStream. Each message carries the
// identity headers and a unique message ID for server-side deduplication.
type NATSDialer struct {
	url    string
	opts   Options
	logger logger.Logger
}

var _ Dialer = (*NATSDialer)(nil)

// NewNATSDialer builds a dialer for a nats:// or tls:// url.
func NewNATSDialer(url string, opts Options, log logger.Logger) *NATSDialer {
	return &NATSDialer{url: url, opts: opts, logger: log}
}

// Subject returns the subject a message type is published to.
func Subject(prefix string, msgType models.MessageType) string {
	return prefix + "." + string(msgType)
}

// StreamName derives the JetStream stream name from a subject prefix, e.g.
// "lanwatch.agent" becomes "LANWATCH_AGENT".
func StreamName(prefix string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "*", "_", ">", "_").Replace(prefix))
}

// Dial implements Dialer.
func (d *NATSDialer) Dial(ctx context.Context, identity *models.AgentIdentity) (Conn, error) {
	c := &natsConn{
		prefix:  d.opts.SubjectPrefix,
		headers: identity.Headers(),
		done:    make(chan struct{}),
	}

	opts := []nats.Option{
		nats.Name("lanwatch-agent " + identity.ID),
		nats.NoReconnect(),
		nats.ClosedHandler(func(*nats.Conn) { c.markDone() }),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				d.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
	}

	if d.opts.HandshakeTimeout > 0 {
		opts = append(opts, nats.Timeout(d.opts.HandshakeTimeout))
	}

	if isTLSURL(d.url) || d.opts.NoHostnameCheck {
		opts = append(opts, nats.Secure(tlsConfig(&d.opts)))
	}

	nc, err := nats.Connect(d.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", models.ErrTransport, d.url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("%w: jetstream: %w", models.ErrTransport, err)
	}

	if err := ensureStream(ctx, js, d.opts.SubjectPrefix); err != nil {
		nc.Close()

		return nil, fmt.Errorf("%w: %w", models.ErrTransport, err)
	}

	c.nc = nc
	c.js = js

	d.logger.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")

	return c, nil
}

func isTLSURL(raw string) bool {
	u, err := url.Parse(raw)

	return err == nil && u.Scheme == "tls"
}

func ensureStream(ctx context.Context, js jetstream.JetStream, prefix string) error {
	name := StreamName(prefix)

	_, err := js.Stream(ctx, name)
	if err == nil {
		return nil
	}

	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream %s: %w", name, err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{prefix + ".>"},
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}

	return nil
}

type natsConn struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	prefix  string
	headers http.Header

	done     chan struct{}
	doneOnce sync.Once
}

func (c *natsConn) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *natsConn) Send(ctx context.Context, msg *models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.MsgType, err)
	}

	m := &nats.Msg{
		Subject: Subject(c.prefix, msg.MsgType),
		Data:    data,
		Header:  nats.Header(c.headers.Clone()),
	}

	if _, err := c.js.PublishMsg(ctx, m, jetstream.WithMsgID(uuid.NewString())); err != nil {
		return fmt.Errorf("%w: publish %s: %w", models.ErrTransport, m.Subject, err)
	}

	return nil
}

func (c *natsConn) Done() <-chan struct{} {
	return c.done
}

func (c *natsConn) Close() error {
	c.nc.Close()
	c.markDone()

	return nil
}
