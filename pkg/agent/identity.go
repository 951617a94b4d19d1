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

package agent

import (
	"context"
	"crypto/sha1" //nolint:gosec // agent IDs are SHA1(hostname) for compatibility with existing collectors
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/models"
)

// IdentityOptions select how a new identity is built.
type IdentityOptions struct {
	SubstationName string
	UseUUID        bool
}

// AgentID returns the hex SHA1 of hostname, or a random UUID when useUUID is
// set.
func AgentID(hostname string, useUUID bool) string {
	if useUUID {
		return uuid.NewString()
	}

	sum := sha1.Sum([]byte(hostname)) //nolint:gosec // see import

	return hex.EncodeToString(sum[:])
}

// BootstrapIdentity returns the stored identity, creating it on first start.
// An existing identity is never rewritten.
func BootstrapIdentity(
	ctx context.Context,
	store db.Service,
	host Host,
	networks []models.LocalNetwork,
	opts IdentityOptions,
	log logger.Logger,
) (*models.AgentIdentity, error) {
	existing, err := store.GetIdentity(ctx)
	if err == nil {
		log.Info().Str("agent_id", existing.ID).Msg("Using registered agent identity")

		return existing, nil
	}

	if !errors.Is(err, db.ErrIdentityNotFound) {
		return nil, err
	}

	facts, err := host.Facts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host facts: %w", err)
	}

	ifaces := map[string]string{}
	for _, n := range networks {
		ifaces[n.Iface] = n.CIDR
	}

	ifacesJSON, err := json.Marshal(ifaces)
	if err != nil {
		return nil, err
	}

	now := models.NowMillis()

	identity := &models.AgentIdentity{
		ID:             AgentID(facts.Hostname, opts.UseUUID),
		MAC:            facts.MAC,
		IP:             facts.IP,
		Hostname:       facts.Hostname,
		SubstationName: opts.SubstationName,
		Ifaces:         string(ifacesJSON),
		LastUpdate:     now,
		RegistrationTS: now,
	}

	err = store.CreateIdentity(ctx, identity)

	switch {
	case errors.Is(err, db.ErrIdentityExists):
		return store.GetIdentity(ctx)
	case err != nil:
		return nil, err
	}

	log.Info().
		Str("agent_id", identity.ID).
		Str("ip", identity.IP).
		Str("hostname", identity.Hostname).
		Msg("Registered agent identity")

	return identity, nil
}
