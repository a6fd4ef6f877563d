package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/envlink/internal/config"
)

// fakeRunner answers commands by their joined argv.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	calls   []string
}

func (f *fakeRunner) set(call, output string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[call] = output
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	out, ok := f.outputs[call]
	if !ok {
		return nil, fmt.Errorf("unexpected command: %s", call)
	}
	return []byte(out), nil
}

type testEnv struct {
	root    string
	project string
	out     *bytes.Buffer
	runner  *fakeRunner
	s       *session
}

// env returns the absolute path of an environment directory created under root/envs.
func (e *testEnv) env(name string) string {
	return filepath.Join(e.root, "envs", name)
}

// setActive makes the fake poetry report name as the active environment.
func (e *testEnv) setActive(name string) {
	var lines []string
	for _, n := range []string{"demo-AbC123xY-py3.11", "demo-AbC123xY-py3.12"} {
		line := e.env(n)
		if n == name {
			line += " (Activated)"
		}
		lines = append(lines, line)
	}
	e.runner.set("poetry env list --full-path", strings.Join(lines, "\n")+"\n")
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	project := filepath.Join(root, "project")
	for _, dir := range []string{"envs/demo-AbC123xY-py3.11", "envs/demo-AbC123xY-py3.12", "project"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	cfg, err := config.Load(afero.NewMemMapFs(), viper.New(), config.CliOnlyOptions{})
	require.NoError(t, err)
	cfg.DB.Path = filepath.Join(root, "data", "history.db")

	r := &fakeRunner{outputs: map[string]string{
		"poetry --version":                "Poetry (version 1.2.3.post1)\n",
		"poetry config virtualenvs.path": filepath.Join(root, "envs") + "\n",
	}}
	out := &bytes.Buffer{}

	e := &testEnv{
		root:    root,
		project: project,
		out:     out,
		runner:  r,
		s: &session{
			cfg:      cfg,
			fs:       afero.NewOsFs(),
			run:      r,
			lookPath: func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
			out:      out,
			errOut:   io.Discard,
			workDir:  project,
		},
	}
	e.setActive("demo-AbC123xY-py3.12")
	return e
}

func (e *testEnv) writePyproject(t *testing.T, name string) {
	t.Helper()
	contents := fmt.Sprintf("[tool.poetry]\nname = %q\nversion = \"0.1.0\"\n", name)
	require.NoError(t, os.WriteFile(filepath.Join(e.project, "pyproject.toml"), []byte(contents), 0o644))
}

func (e *testEnv) linkTarget(t *testing.T) string {
	t.Helper()
	target, err := os.Readlink(filepath.Join(e.project, "venv"))
	require.NoError(t, err)
	return target
}
