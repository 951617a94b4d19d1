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

package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// waitDelay bounds how long Run waits for output pipes after the shell is
// killed, in case a grandchild still holds them open.
const waitDelay = time.Second

// ShellRunner runs commands through sh -c in their own process group so that
// a timeout kills the whole pipeline.
type ShellRunner struct{}

var _ Runner = ShellRunner{}

// Run implements Runner.
func (ShellRunner) Run(ctx context.Context, command string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	cerr := &CommandError{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	var exitErr *exec.ExitError

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		cerr.Err = fmt.Errorf("%w after %s", ErrCommandTimeout, timeout)
	case errors.As(err, &exitErr):
		cerr.Err = fmt.Errorf("%w with exit code %d", ErrCommandFailed, exitErr.ExitCode())
	default:
		cerr.Err = fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	return nil, cerr
}
