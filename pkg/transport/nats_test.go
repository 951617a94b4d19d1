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
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

const testPrefix = "lanwatch.agent"

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	t.Cleanup(srv.Shutdown)

	return srv
}

func dialNATS(ctx context.Context, t *testing.T, srv *server.Server) Conn {
	t.Helper()

	d := NewNATSDialer(srv.ClientURL(), Options{
		HandshakeTimeout: 5 * time.Second,
		SubjectPrefix:    testPrefix,
	}, logger.NewTestLogger())

	conn, err := d.Dial(ctx, testIdentity())
	require.NoError(t, err)

	return conn
}

func TestNATSPublishesToStream(t *testing.T) {
	srv := runJetStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn := dialNATS(ctx, t, srv)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.Send(ctx, &models.Message{
		AgentID: "agent-1",
		MsgType: models.MsgLinks,
		Data:    []models.LinkRecord{{Status: "up", SrcIP: "10.0.0.2", Attributes: models.EmptyAttributes}},
	}))

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	cons, err := js.CreateOrUpdateConsumer(ctx, StreamName(testPrefix), jetstream.ConsumerConfig{
		FilterSubject: Subject(testPrefix, models.MsgLinks),
	})
	require.NoError(t, err)

	msg, err := cons.Next(jetstream.FetchMaxWait(5 * time.Second))
	require.NoError(t, err)

	assert.Equal(t, "agent-1", msg.Headers().Get("Id"))
	assert.Equal(t, "north", msg.Headers().Get("Substation_name"))
	assert.NotEmpty(t, msg.Headers().Get("Nats-Msg-Id"))

	var got struct {
		AgentID string              `json:"agent_id"`
		MsgType models.MessageType  `json:"msg_type"`
		Data    []models.LinkRecord `json:"data"`
	}

	require.NoError(t, json.Unmarshal(msg.Data(), &got))
	assert.Equal(t, "agent-1", got.AgentID)
	assert.Equal(t, models.MsgLinks, got.MsgType)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "10.0.0.2", got.Data[0].SrcIP)
}

func TestNATSDialCreatesStreamOnce(t *testing.T) {
	srv := runJetStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	first := dialNATS(ctx, t, srv)
	require.NoError(t, first.Close())

	second := dialNATS(ctx, t, srv)
	defer func() { _ = second.Close() }()

	assert.NoError(t, second.Send(ctx, &models.Message{AgentID: "agent-1", MsgType: models.MsgIDS, Data: []models.IDSRecord{}}))
}

func TestNATSServerShutdownClosesConn(t *testing.T) {
	srv := runJetStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn := dialNATS(ctx, t, srv)
	defer func() { _ = conn.Close() }()

	srv.Shutdown()

	select {
	case <-conn.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("connection not marked done after server shutdown")
	}
}

func TestNATSDialFailure(t *testing.T) {
	d := NewNATSDialer("nats://127.0.0.1:1", Options{
		HandshakeTimeout: 200 * time.Millisecond,
		SubjectPrefix:    testPrefix,
	}, logger.NewTestLogger())

	_, err := d.Dial(context.Background(), testIdentity())
	require.ErrorIs(t, err, models.ErrTransport)
}
