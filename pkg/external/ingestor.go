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

// Package external runs pluggable probe commands and stores the link and
// intrusion-detection records they print.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	outcomeOK        = "ok"
	outcomeEmpty     = "empty"
	outcomeTimeout   = "timeout"
	outcomeFailed    = "failed"
	outcomeMalformed = "malformed"
	outcomeStore     = "store_error"
)

// Ingestor runs every configured command on its own cadence.
type Ingestor struct {
	store    db.Service
	runner   Runner
	commands []config.ExternalCommand
	logger   logger.Logger
}

// NewIngestor validates cfg and builds an ingestor for its commands.
func NewIngestor(store db.Service, runner Runner, cfg *config.ExternalConfig, log logger.Logger) (*Ingestor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}

	return &Ingestor{
		store:    store,
		runner:   runner,
		commands: cfg.ResolvedCommands(),
		logger:   log,
	}, nil
}

// Run invokes the commands until ctx is cancelled.
func (in *Ingestor) Run(ctx context.Context) error {
	if len(in.commands) == 0 {
		in.logger.Info().Msg("No external commands configured")

		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, c := range in.commands {
		g.Go(func() error {
			in.loop(ctx, c)

			return nil
		})
	}

	err := g.Wait()

	in.logger.Info().Msg("Context canceled, stopping external ingestor")

	return err
}

func (in *Ingestor) loop(ctx context.Context, c config.ExternalCommand) {
	interval := c.Interval.Std()

	in.logger.Info().
		Str("command", c.Command).
		Dur("interval", interval).
		Dur("timeout", c.Timeout.Std()).
		Msg("Starting external command")

	for {
		start := time.Now()

		in.runOnce(ctx, c)

		wait := max(interval-time.Since(start), 0)

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()

			return
		case <-timer.C:
		}
	}
}

// runOnce invokes the command once and stores what it printed. Every failure
// is logged and the next invocation proceeds as usual.
func (in *Ingestor) runOnce(ctx context.Context, c config.ExternalCommand) {
	out, err := in.runner.Run(ctx, c.Command, c.Timeout.Std())
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		in.logRunError(c.Command, err)

		return
	}

	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		metrics.ExternalRunsTotal.WithLabelValues(outcomeEmpty).Inc()

		return
	}

	batch, err := Parse(out)
	if err != nil {
		metrics.ExternalRunsTotal.WithLabelValues(outcomeMalformed).Inc()
		in.logger.Error().Err(err).Str("command", c.Command).Msg("External command returned malformed JSON data")

		return
	}

	if batch.Ignored > 0 {
		metrics.ExternalRecordsTotal.WithLabelValues("ignored").Add(float64(batch.Ignored))
		in.logger.Debug().Int("ignored", batch.Ignored).Str("command", c.Command).Msg("Ignored records with unknown type")
	}

	if err := in.save(ctx, batch); err != nil {
		metrics.ExternalRunsTotal.WithLabelValues(outcomeStore).Inc()
		in.logger.Error().Err(err).Str("command", c.Command).Msg("Inserting link and/or IDS data failed")

		return
	}

	metrics.ExternalRunsTotal.WithLabelValues(outcomeOK).Inc()
}

// save inserts the records of each kind together.
func (in *Ingestor) save(ctx context.Context, batch *Batch) error {
	if len(batch.Links) > 0 {
		if err := in.store.InsertLinkRecords(ctx, batch.Links); err != nil {
			return err
		}

		metrics.ExternalRecordsTotal.WithLabelValues(string(models.KindLink)).Add(float64(len(batch.Links)))
	}

	if len(batch.IDS) > 0 {
		if err := in.store.InsertIDSRecords(ctx, batch.IDS); err != nil {
			return err
		}

		metrics.ExternalRecordsTotal.WithLabelValues(string(models.KindIDS)).Add(float64(len(batch.IDS)))
	}

	return nil
}

func (in *Ingestor) logRunError(command string, err error) {
	outcome := outcomeFailed
	if errors.Is(err, ErrCommandTimeout) {
		outcome = outcomeTimeout
	}

	metrics.ExternalRunsTotal.WithLabelValues(outcome).Inc()

	ev := in.logger.Error().Err(err).Str("command", command)

	var cerr *CommandError
	if errors.As(err, &cerr) {
		ev = ev.Str("stdout", cerr.Stdout).Str("stderr", cerr.Stderr)
	}

	ev.Msg("External command failed")
}
