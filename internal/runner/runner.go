// Package runner executes external tools from argument vectors.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/envlink/internal/log"
)

// Runner executes an external command from an argument vector and returns its
// standard output. Commands are never passed through a shell.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// Run blocks until the command exits; there is no timeout beyond ctx.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdLog := log.WithFields(map[string]interface{}{"cmd": name})
	cmdLog.Debugf("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	cmdLog.Tracef("output: %q", output)
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return output, fmt.Errorf("%s %s failed: %w (stderr: %s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return output, fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}
	return output, nil
}
