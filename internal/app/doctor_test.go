package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestRunDoctor_AllChecksPass(t *testing.T) {
	e := newTestEnv(t)
	e.writePyproject(t, "demo")
	_, err := runLink(context.Background(), e.s, "automatic")
	require.NoError(t, err)
	e.out.Reset()

	require.NoError(t, runDoctor(context.Background(), e.s))

	out := e.out.String()
	assert.Contains(t, out, "✓ poetry found: /usr/local/bin/poetry")
	assert.Contains(t, out, "✓ poetry version: 1.2.3.post1")
	assert.Contains(t, out, "✓ link history: 1 event(s)")
	assert.Contains(t, out, "All checks passed")
}

// TestRunDoctor_WarningOnlyReturnsNil verifies that warnings alone do not fail
// the command.
func TestRunDoctor_WarningOnlyReturnsNil(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, runDoctor(context.Background(), e.s))

	out := e.out.String()
	assert.Contains(t, out, "⚠ pyproject.toml missing")
	assert.Contains(t, out, "⚠ no link")
	assert.Contains(t, out, "warning(s)")
}

func TestRunDoctor_PoetryMissingIsCritical(t *testing.T) {
	e := newTestEnv(t)
	e.s.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	err := runDoctor(context.Background(), e.s)
	assert.ErrorIs(t, err, ErrDiagnosticsFailed)
	assert.Contains(t, e.out.String(), "✗ poetry not found")
	assert.Empty(t, e.runner.calls)
}

func TestRunDoctor_OldPoetryIsCritical(t *testing.T) {
	e := newTestEnv(t)
	e.runner.outputs["poetry --version"] = "Poetry version 0.12.17\n"

	err := runDoctor(context.Background(), e.s)
	assert.ErrorIs(t, err, ErrDiagnosticsFailed)
	assert.Contains(t, e.out.String(), "✗ poetry version")
}

func TestRunDoctor_StaleLink(t *testing.T) {
	e := newTestEnv(t)
	e.writePyproject(t, "demo")
	_, err := runLink(context.Background(), e.s, e.env("demo-AbC123xY-py3.11"))
	require.NoError(t, err)
	e.out.Reset()

	require.NoError(t, runDoctor(context.Background(), e.s))
	assert.Contains(t, e.out.String(), "⚠ link is stale")
}

func TestRunDoctor_ForeignEnvironment(t *testing.T) {
	e := newTestEnv(t)
	e.writePyproject(t, "other-project")

	require.NoError(t, runDoctor(context.Background(), e.s))
	assert.Contains(t, e.out.String(), "⚠ active environment belongs to another project")
}
