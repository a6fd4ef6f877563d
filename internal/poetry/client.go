// Package poetry wraps the Poetry CLI: the version gate, the environment
// listing and discovery of the active virtual environment.
package poetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/blackwell-systems/envlink/internal/config"
	"github.com/blackwell-systems/envlink/internal/envlinkerr"
	"github.com/blackwell-systems/envlink/internal/log"
	"github.com/blackwell-systems/envlink/internal/runner"
	"github.com/blackwell-systems/envlink/internal/version"
)

// Client runs Poetry commands through a runner.Runner.
type Client struct {
	run runner.Runner
	cfg config.Poetry
}

// NewClient creates a Client. A nil r means runner.ExecRunner.
func NewClient(r runner.Runner, cfg config.Poetry) *Client {
	if r == nil {
		r = runner.ExecRunner{}
	}
	return &Client{run: r, cfg: cfg}
}

// Version runs `poetry --version` and checks it against the configured minimum.
func (c *Client) Version(ctx context.Context) (*version.Version, error) {
	output, err := c.run.Run(ctx, c.cfg.Binary, "--version")
	if err != nil {
		return nil, fmt.Errorf("poetry --version: %w", err)
	}

	v, err := version.Gate("poetry", string(output), c.cfg.MinimumVersion, version.PEP440Format)
	if err != nil {
		return nil, err
	}
	log.Debugf("poetry version %s satisfies minimum %s", v, c.cfg.MinimumVersion)
	return v, nil
}

// ListEnvironments runs `poetry env list --full-path`.
func (c *Client) ListEnvironments(ctx context.Context) ([]Environment, error) {
	output, err := c.listOutput(ctx)
	if err != nil {
		return nil, err
	}
	return ParseEnvironments(output, c.cfg.ActiveMarker), nil
}

func (c *Client) listOutput(ctx context.Context) (string, error) {
	output, err := c.run.Run(ctx, c.cfg.Binary, "env", "list", "--full-path")
	if err != nil {
		return "", fmt.Errorf("poetry env list: %w", err)
	}
	return string(output), nil
}

// Active is the result of discovery.
type Active struct {
	Path          string
	PoetryVersion *version.Version
}

// Discover finds the active environment: the version gate runs first, then
// the listing is scanned for the marker and the path is checked on fs.
func (c *Client) Discover(ctx context.Context, fs afero.Fs) (*Active, error) {
	v, err := c.Version(ctx)
	if err != nil {
		return nil, err
	}

	output, err := c.listOutput(ctx)
	if err != nil {
		return nil, err
	}

	path, err := FindActive(output, c.cfg.ActiveMarker)
	if err != nil {
		return nil, err
	}

	exists, err := afero.DirExists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return nil, &envlinkerr.NotFoundError{What: "could not find path to active environment", Path: path}
	}

	log.Infof("active poetry environment: %s", path)
	return &Active{Path: path, PoetryVersion: v}, nil
}

// ActiveEnvironment returns the path of the active environment.
func (c *Client) ActiveEnvironment(ctx context.Context, fs afero.Fs) (string, error) {
	active, err := c.Discover(ctx, fs)
	if err != nil {
		return "", err
	}
	return active.Path, nil
}

// VirtualenvsPath returns the directory Poetry creates environments in.
func (c *Client) VirtualenvsPath(ctx context.Context) (string, error) {
	output, err := c.run.Run(ctx, c.cfg.Binary, "config", "virtualenvs.path")
	if err != nil {
		return "", fmt.Errorf("poetry config virtualenvs.path: %w", err)
	}
	path := strings.TrimSpace(string(output))
	if path == "" {
		return "", envlinkerr.NewConfigurationError("poetry reported an empty virtualenvs.path")
	}
	return path, nil
}
