package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultCommandTimeout = 30 * time.Second

	errorCommandTimeoutFormat = "%s timed out after %s: %w"
	errorCommandFailedFormat  = "%s failed: %w, stderr: %s"
)

// CommandRunner executes an external program, feeding stdin and returning stdout.
type CommandRunner interface {
	Run(executionContext context.Context, stdin string, name string, arguments ...string) (string, error)
}

// ExecRunner runs commands with os/exec under a per-command timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// Run implements CommandRunner.
func (runner ExecRunner) Run(executionContext context.Context, stdin string, name string, arguments ...string) (string, error) {
	timeout := runner.Timeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	commandContext, cancel := context.WithTimeout(executionContext, timeout)
	defer cancel()

	command := exec.CommandContext(commandContext, name, arguments...)
	command.Stdin = strings.NewReader(stdin)
	var standardOutput, standardError bytes.Buffer
	command.Stdout = &standardOutput
	command.Stderr = &standardError

	runError := command.Run()
	if errors.Is(commandContext.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf(errorCommandTimeoutFormat, name, timeout, commandContext.Err())
	}
	if runError != nil {
		return "", fmt.Errorf(errorCommandFailedFormat, name, runError, strings.TrimSpace(standardError.String()))
	}
	return standardOutput.String(), nil
}
