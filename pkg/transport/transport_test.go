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
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

type received struct {
	header http.Header
	msgs   chan models.Message
}

// newCollector starts a WebSocket endpoint that records the handshake
// headers and every decoded message. closeAfter > 0 drops the connection
// after that many messages.
func newCollector(t *testing.T, tlsServer bool, closeAfter int) (*httptest.Server, *received) {
	t.Helper()

	rec := &received{msgs: make(chan models.Message, 16)}
	upgrader := websocket.Upgrader{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.header = r.Header.Clone()

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = ws.Close() }()

		for n := 0; closeAfter == 0 || n < closeAfter; n++ {
			var msg models.Message
			if err := ws.ReadJSON(&msg); err != nil {
				return
			}

			rec.msgs <- msg
		}
	})

	var srv *httptest.Server
	if tlsServer {
		srv = httptest.NewTLSServer(handler)
	} else {
		srv = httptest.NewServer(handler)
	}

	t.Cleanup(srv.Close)

	return srv, rec
}

func testIdentity() *models.AgentIdentity {
	return &models.AgentIdentity{
		ID:             "agent-1",
		MAC:            "aa:bb:cc:dd:ee:ff",
		IP:             "10.0.0.1",
		Hostname:       "gw",
		SubstationName: "north",
		Ifaces:         `{"eth0":"10.0.0.1/24"}`,
	}
}

func TestWebSocketSendsIdentityAndMessages(t *testing.T) {
	srv, rec := newCollector(t, false, 0)

	d := NewWebSocketDialer("ws://"+strings.TrimPrefix(srv.URL, "http://"), Options{
		HandshakeTimeout: time.Second,
		WriteTimeout:     time.Second,
	}, logger.NewTestLogger())

	ctx := context.Background()

	conn, err := d.Dial(ctx, testIdentity())
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	bw := 12.5
	msg := &models.Message{
		AgentID:        "agent-1",
		MsgType:        models.MsgDevices,
		Data:           map[string]string{"aa": "bb"},
		AgentBandwidth: &bw,
	}

	require.NoError(t, conn.Send(ctx, msg))

	select {
	case got := <-rec.msgs:
		assert.Equal(t, models.MsgDevices, got.MsgType)
		assert.Equal(t, "agent-1", got.AgentID)
		require.NotNil(t, got.AgentBandwidth)
		assert.InDelta(t, 12.5, *got.AgentBandwidth, 0)
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}

	assert.Equal(t, "agent-1", rec.header.Get("id"))
	assert.Equal(t, "north", rec.header.Get("substation_name"))
	assert.JSONEq(t, `{"eth0":"10.0.0.1/24"}`, rec.header.Get("ifaces"))
}

func TestWebSocketPeerCloseTearsDown(t *testing.T) {
	srv, rec := newCollector(t, false, 1)

	d := NewWebSocketDialer("ws://"+strings.TrimPrefix(srv.URL, "http://"), Options{WriteTimeout: time.Second}, logger.NewTestLogger())
	ctx := context.Background()

	conn, err := d.Dial(ctx, testIdentity())
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.Send(ctx, &models.Message{MsgType: models.MsgLinks, Data: []int{}}))
	<-rec.msgs

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("peer close not observed")
	}

	err = conn.Send(ctx, &models.Message{MsgType: models.MsgLinks, Data: []int{}})
	require.ErrorIs(t, err, models.ErrTransport)
	require.ErrorIs(t, err, ErrConnClosed)
}

func TestWebSocketDialFailure(t *testing.T) {
	d := NewWebSocketDialer("ws://127.0.0.1:1", Options{HandshakeTimeout: time.Second}, logger.NewTestLogger())

	_, err := d.Dial(context.Background(), testIdentity())
	require.ErrorIs(t, err, models.ErrTransport)
}

func TestWebSocketHostnameCheck(t *testing.T) {
	srv, _ := newCollector(t, true, 0)

	roots := srv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs

	// The test certificate is issued for example.com and 127.0.0.1, so
	// "localhost" does not match its names.
	url := fmt.Sprintf("wss://localhost:%d", srv.Listener.Addr().(*net.TCPAddr).Port)

	strict := NewWebSocketDialer(url, Options{HandshakeTimeout: time.Second, rootCAs: roots}, logger.NewTestLogger())
	_, err := strict.Dial(context.Background(), testIdentity())
	require.ErrorIs(t, err, models.ErrTransport)

	relaxed := NewWebSocketDialer(url, Options{HandshakeTimeout: time.Second, NoHostnameCheck: true, rootCAs: roots}, logger.NewTestLogger())
	conn, err := relaxed.Dial(context.Background(), testIdentity())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	untrusted := NewWebSocketDialer(url, Options{HandshakeTimeout: time.Second, NoHostnameCheck: true}, logger.NewTestLogger())
	_, err = untrusted.Dial(context.Background(), testIdentity())
	require.ErrorIs(t, err, models.ErrTransport)
}

func TestNewDialer(t *testing.T) {
	log := logger.NewTestLogger()

	tests := []struct {
		url     string
		want    interface{}
		wantErr bool
	}{
		{url: "ws://collector:8080/agent", want: &WebSocketDialer{}},
		{url: "wss://collector/agent", want: &WebSocketDialer{}},
		{url: "nats://collector:4222", want: &NATSDialer{}},
		{url: "tls://collector:4222", want: &NATSDialer{}},
		{url: "http://collector", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := NewDialer(tt.url, Options{}, log)
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrConfiguration)
				require.ErrorIs(t, err, ErrUnsupportedScheme)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.want, d)
		})
	}
}

func TestSubjectAndStreamName(t *testing.T) {
	assert.Equal(t, "lanwatch.agent.devices_data", Subject("lanwatch.agent", models.MsgDevices))
	assert.Equal(t, "LANWATCH_AGENT", StreamName("lanwatch.agent"))
}

func TestMessageJSONOmitsEmptyBandwidth(t *testing.T) {
	b, err := json.Marshal(&models.Message{AgentID: "a", MsgType: models.MsgIDS, Data: []int{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent_id":"a","msg_type":"ids_data","data":[]}`, string(b))
}
