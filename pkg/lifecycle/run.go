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

package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/lanwatch/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a long-running component that blocks in Run until ctx is
// cancelled and releases its resources in Close.
type Service interface {
	Run(ctx context.Context) error
	Close() error
}

// RunAgent runs svc until SIGINT or SIGTERM arrives, then closes it.
// Errors returned after the context is done are treated as a clean shutdown.
func RunAgent(ctx context.Context, svc Service, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- svc.Run(ctx)
	}()

	var runErr error

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received, stopping agent")

		select {
		case runErr = <-errCh:
		case <-time.After(defaultShutdownTimeout):
			log.Warn().Dur("timeout", defaultShutdownTimeout).Msg("Agent did not stop in time")
		}
	case runErr = <-errCh:
	}

	if err := svc.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close agent")
	}

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}

	log.Info().Msg("Agent stopped")

	return nil
}
