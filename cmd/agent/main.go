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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carverauto/lanwatch/pkg/agent"
	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/lifecycle"
	"github.com/carverauto/lanwatch/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	runCmd := newRunCmd(&runFlags{})

	root := &cobra.Command{
		Use:           "lanwatch-agent",
		Short:         "lanwatch agent - local network discovery and telemetry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd.RunE,
	}

	// run is the default command, so its flags are accepted on the root too.
	root.Flags().AddFlagSet(runCmd.Flags())

	root.AddCommand(runCmd, newVersionCmd())

	return root
}

func newRunCmd(flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgent(cmd, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("lanwatch-agent %s\n", version.GetFullVersion())
		},
	}
}

func runAgent(cmd *cobra.Command, flags *runFlags) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, cmd, flags)
	if err != nil {
		return err
	}

	log, err := lifecycle.CreateComponentLogger("agent", cfg.Logging)
	if err != nil {
		return err
	}

	log.Info().Str("version", version.GetFullVersion()).Str("server_url", cfg.ServerURL).Msg("Starting lanwatch agent")

	a, err := agent.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return lifecycle.RunAgent(ctx, a, log)
}

// loadConfig reads the config file, applies the environment overlay and then
// the explicitly set flags, and validates the result. A missing file at the
// default path is not an error.
func loadConfig(ctx context.Context, cmd *cobra.Command, flags *runFlags) (*config.AgentConfig, error) {
	cfg := config.DefaultAgentConfig()

	path := flags.configPath
	if !cmd.Flags().Changed(flagConfig) {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	if err := config.NewConfig(nil).Load(ctx, path, cfg); err != nil {
		return nil, err
	}

	flags.apply(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
