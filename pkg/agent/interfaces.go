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

	psnet "github.com/shirou/gopsutil/v3/net"
)

//go:generate mockgen -destination=mock_agent.go -package=agent github.com/carverauto/lanwatch/pkg/agent Host

// HostFacts identify the machine the agent runs on.
type HostFacts struct {
	Hostname string
	IP       string
	MAC      string
}

// Host reports facts about the local machine.
type Host interface {
	Facts(ctx context.Context) (*HostFacts, error)
	Interfaces(ctx context.Context) ([]psnet.InterfaceStat, error)
}
