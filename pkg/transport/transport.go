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

// Package transport streams agent messages to the collector over WebSocket
// or NATS JetStream.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"time"

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

// Options are shared by every dialer.
type Options struct {
	// NoHostnameCheck keeps certificate chain verification but skips matching
	// the server name against the certificate.
	NoHostnameCheck  bool
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// SubjectPrefix is the NATS subject prefix; messages go to
	// <prefix>.<msg_type>.
	SubjectPrefix string

	rootCAs *x509.CertPool
}

// NewDialer selects a dialer from the scheme of serverURL: ws and wss use
// WebSocket, nats and tls use NATS.
func NewDialer(serverURL string, opts Options, log logger.Logger) (Dialer, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}

	switch u.Scheme {
	case "ws", "wss":
		return NewWebSocketDialer(serverURL, opts, log), nil
	case "nats", "tls":
		return NewNATSDialer(serverURL, opts, log), nil
	default:
		return nil, fmt.Errorf("%w: %w %q", models.ErrConfiguration, ErrUnsupportedScheme, u.Scheme)
	}
}

// tlsConfig returns the client TLS configuration for opts.
func tlsConfig(opts *Options) *tls.Config {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    opts.rootCAs,
	}

	if !opts.NoHostnameCheck {
		return cfg
	}

	// Standard verification always checks the name, so it is replaced by a
	// chain-only check.
	cfg.InsecureSkipVerify = true //nolint:gosec // chain is still verified in VerifyConnection
	cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		return verifyChain(cs.PeerCertificates, opts.rootCAs)
	}

	return cfg
}

func verifyChain(certs []*x509.Certificate, roots *x509.CertPool) error {
	if len(certs) == 0 {
		return errNoPeerCertificate
	}

	intermediates := x509.NewCertPool()
	for _, c := range certs[1:] {
		intermediates.AddCert(c)
	}

	_, err := certs[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
	})

	return err
}
