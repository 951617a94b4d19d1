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
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/logger"
)

const (
	flagConfig           = "config"
	flagDBFilePath       = "db-file-path"
	flagServerURL        = "server-url"
	flagSubstationName   = "substation-name"
	flagNetInterfaces    = "net-interfaces"
	flagNoHostnameCheck  = "no-hostname-check"
	flagExternalInterval = "external-interval"
	flagExternalTimeout  = "external-timeout"
	flagExternalCommand  = "external-command"
	flagUUID             = "uuid"
	flagMetricsAddr      = "metrics-listen-addr"
	flagLogLevel         = "log-level"
)

// runFlags holds command-line overrides. Only flags the user set are applied
// over the file and environment configuration.
type runFlags struct {
	configPath       string
	dbFilePath       string
	serverURL        string
	substationName   string
	netInterfaces    []string
	noHostnameCheck  bool
	externalInterval config.Duration
	externalTimeout  config.Duration
	externalCommands []string
	useUUID          bool
	metricsAddr      string
	logLevel         string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()

	fs.StringVarP(&f.configPath, flagConfig, "c", config.DefaultConfigPath, "path to the JSON or YAML config file")
	fs.StringVar(&f.dbFilePath, flagDBFilePath, config.DefaultDBFilePath, "path to the SQLite state file")
	fs.StringVar(&f.serverURL, flagServerURL, "", "collector URL (ws://, wss://, nats:// or tls://)")
	fs.StringVar(&f.substationName, flagSubstationName, "", "substation name reported with the agent identity")
	fs.StringSliceVar(&f.netInterfaces, flagNetInterfaces, nil, "interfaces to scan for devices, comma separated")
	fs.BoolVar(&f.noHostnameCheck, flagNoHostnameCheck, false, "skip TLS certificate hostname validation")
	fs.Var(&f.externalInterval, flagExternalInterval, "default external command interval (seconds or duration)")
	fs.Var(&f.externalTimeout, flagExternalTimeout, "default external command timeout (seconds or duration)")
	fs.StringArrayVar(&f.externalCommands, flagExternalCommand, nil, "external probe command, may be repeated")
	fs.BoolVar(&f.useUUID, flagUUID, false, "use a random UUID instead of SHA1(hostname) as the agent ID")
	fs.StringVar(&f.metricsAddr, flagMetricsAddr, "", "address for the Prometheus /metrics endpoint")
	fs.StringVar(&f.logLevel, flagLogLevel, "", "log level (trace, debug, info, warn, error)")
}

// apply copies every flag set on the command line into cfg.
func (f *runFlags) apply(fs *pflag.FlagSet, cfg *config.AgentConfig) {
	set := fs.Changed

	if set(flagDBFilePath) {
		cfg.DBFilePath = f.dbFilePath
	}

	if set(flagServerURL) {
		cfg.ServerURL = f.serverURL
	}

	if set(flagSubstationName) {
		cfg.SubstationName = f.substationName
	}

	if set(flagNetInterfaces) {
		cfg.NetInterfaces = f.netInterfaces
	}

	if set(flagNoHostnameCheck) {
		cfg.NoHostnameCheck = f.noHostnameCheck
	}

	if set(flagExternalInterval) {
		cfg.External.Interval = f.externalInterval
	}

	if set(flagExternalTimeout) {
		cfg.External.Timeout = f.externalTimeout
	}

	if set(flagExternalCommand) {
		cfg.External.Commands = cfg.External.Commands[:0]
		for _, c := range f.externalCommands {
			cfg.External.Commands = append(cfg.External.Commands, config.ExternalCommand{Command: c})
		}
	}

	if set(flagUUID) {
		cfg.UseUUID = f.useUUID
	}

	if set(flagMetricsAddr) {
		cfg.Metrics.ListenAddr = f.metricsAddr
	}

	if set(flagLogLevel) {
		if cfg.Logging == nil {
			cfg.Logging = logger.DefaultConfig()
		}

		cfg.Logging.Level = f.logLevel
		cfg.Logging.Debug = false
	}
}
