// Package bluetooth power-cycles macOS Bluetooth, which recovers devices that
// disconnect and refuse to reconnect.
package bluetooth

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/envlink/internal/config"
	"github.com/blackwell-systems/envlink/internal/log"
	"github.com/blackwell-systems/envlink/internal/runner"
	"github.com/blackwell-systems/envlink/internal/version"
)

// Method selects how Bluetooth is restarted.
type Method string

const (
	// MethodKext unloads and reloads the Bluetooth kernel extension via sudo.
	MethodKext Method = "kext"
	// MethodBlueutil toggles controller power with blueutil.
	MethodBlueutil Method = "blueutil"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodKext, MethodBlueutil:
		return m, nil
	default:
		return "", fmt.Errorf("unknown bluetooth restart method %q (want %s or %s)", s, MethodKext, MethodBlueutil)
	}
}

type step struct {
	name string
	argv []string
}

// Restarter runs the restart steps through a runner.Runner.
type Restarter struct {
	run runner.Runner
	cfg config.Bluetooth
}

// NewRestarter creates a Restarter. A nil r means runner.ExecRunner.
func NewRestarter(r runner.Runner, cfg config.Bluetooth) *Restarter {
	if r == nil {
		r = runner.ExecRunner{}
	}
	return &Restarter{run: r, cfg: cfg}
}

// Restart power-cycles Bluetooth with the given method. The first failing
// step aborts the restart.
func (r *Restarter) Restart(ctx context.Context, method Method) error {
	steps, err := r.plan(ctx, method)
	if err != nil {
		return err
	}
	for _, s := range steps {
		log.Infof("bluetooth: %s", s.name)
		if _, err := r.run.Run(ctx, s.argv[0], s.argv[1:]...); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (r *Restarter) plan(ctx context.Context, method Method) ([]step, error) {
	switch method {
	case MethodKext:
		// sudo reads the password from the controlling terminal itself
		return []step{
			{name: "unload kext", argv: []string{"sudo", "kextunload", "-b", r.cfg.Kext}},
			{name: "load kext", argv: []string{"sudo", "kextload", "-b", r.cfg.Kext}},
		}, nil
	case MethodBlueutil:
		if err := r.checkBlueutil(ctx); err != nil {
			return nil, err
		}
		return []step{
			{name: "power off", argv: []string{r.cfg.Blueutil, "--power", "0"}},
			{name: "power on", argv: []string{r.cfg.Blueutil, "--power", "1"}},
		}, nil
	default:
		_, err := ParseMethod(string(method))
		return nil, err
	}
}

func (r *Restarter) checkBlueutil(ctx context.Context) error {
	output, err := r.run.Run(ctx, r.cfg.Blueutil, "--version")
	if err != nil {
		return fmt.Errorf("blueutil version check: %w", err)
	}
	v, err := version.Gate("blueutil", string(output), r.cfg.MinimumBlueutil, version.SemanticFormat)
	if err != nil {
		return err
	}
	log.Debugf("blueutil %s", v)
	return nil
}
