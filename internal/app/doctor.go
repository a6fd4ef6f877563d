package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/output"
	"github.com/blackwell-systems/envlink/internal/poetry"
	"github.com/blackwell-systems/envlink/internal/pyproject"
	"github.com/blackwell-systems/envlink/internal/store"
)

// ErrDiagnosticsFailed is returned when doctor finds a critical issue.
var ErrDiagnosticsFailed = errors.New("diagnostics failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues with poetry and the link",
	Long: `Runs diagnostic checks for the current directory.

Checks:
  • poetry is on PATH and new enough
  • poetry has an active environment
  • pyproject.toml is present and matches the environment
  • the venv link verifies
  • the link history database is readable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return runDoctor(cmd.Context(), s)
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

// doctor accumulates check results. Critical issues fail the command;
// warnings are reported only.
type doctor struct {
	s        *session
	critical int
	warnings int
}

func (d *doctor) ok(label, detail string) {
	fmt.Fprint(d.s.out, output.CheckLine(output.StatusOK, label, detail))
}

func (d *doctor) warn(label, detail, action string) {
	d.warnings++
	fmt.Fprint(d.s.out, output.CheckLine(output.StatusWarn, label, detail))
	if action != "" {
		fmt.Fprintf(d.s.out, "  Action: %s\n", action)
	}
}

func (d *doctor) fail(label, detail, action string) {
	d.critical++
	fmt.Fprint(d.s.out, output.CheckLine(output.StatusFail, label, detail))
	if action != "" {
		fmt.Fprintf(d.s.out, "  Action: %s\n", action)
	}
}

func runDoctor(ctx context.Context, s *session) error {
	fmt.Fprintln(s.out, "Running envlink diagnostics...")
	fmt.Fprintln(s.out)

	d := &doctor{s: s}
	active := d.checkPoetry(ctx)
	d.checkProject(active)
	d.checkLink(active)
	d.checkHistory()

	fmt.Fprintln(s.out)
	switch {
	case d.critical > 0:
		fmt.Fprintf(s.out, "Found %d critical issue(s) and %d warning(s).\n", d.critical, d.warnings)
		return ErrDiagnosticsFailed
	case d.warnings > 0:
		fmt.Fprintf(s.out, "Found %d warning(s). Linking works but is not fully set up.\n", d.warnings)
	default:
		fmt.Fprintln(s.out, "✓ All checks passed!")
	}
	return nil
}

// checkPoetry returns the active environment when one was found.
func (d *doctor) checkPoetry(ctx context.Context) *poetry.Active {
	binary := d.s.cfg.Poetry.Binary
	path, err := d.s.lookPath(binary)
	if err != nil {
		d.fail("poetry not found", binary, "install poetry: https://python-poetry.org/docs/#installation")
		return nil
	}
	d.ok("poetry found", path)

	client := d.s.poetry()
	v, err := client.Version(ctx)
	if err != nil {
		d.fail("poetry version", err.Error(), "poetry self update")
		return nil
	}
	d.ok("poetry version", v.String())

	active, err := client.Discover(ctx, d.s.fs)
	if err != nil {
		d.warn("no active environment", err.Error(), "poetry env use <python>")
		return nil
	}
	d.ok("active environment", active.Path)
	return active
}

func (d *doctor) checkProject(active *poetry.Active) {
	project, err := pyproject.Load(d.s.fs, d.s.workDir)
	if errors.Is(err, pyproject.ErrNotFound) {
		d.warn("pyproject.toml missing", d.s.workDir, "run envlink from the project root")
		return
	}
	if err != nil {
		d.warn("pyproject.toml unreadable", err.Error(), "")
		return
	}
	if !project.IsPoetry() {
		d.warn("pyproject.toml has no [tool.poetry] table", project.Path, "")
		return
	}
	d.ok("poetry project", project.Name())

	if active != nil && !project.MatchesEnvironment(active.Path) {
		d.warn("active environment belongs to another project", active.Path, "cd to the project root before running poetry")
	}
}

func (d *doctor) checkLink(active *poetry.Active) {
	r, err := d.s.replacer()
	if err != nil {
		d.fail("link", err.Error(), "")
		return
	}

	target, exists, err := r.Inspect()
	switch {
	case err != nil:
		d.warn("link location occupied", err.Error(), "envlink link --env automatic")
		return
	case !exists:
		d.warn("no link", r.Path(), "envlink link --env automatic")
		return
	}

	report := r.Verify(target)
	if !report.OK() {
		d.warn("link does not verify", fmt.Sprintf("%s -> %s", r.Path(), target), "envlink link --env automatic")
		return
	}
	d.ok("link", fmt.Sprintf("%s -> %s", r.Path(), target))

	if active != nil && report.Resolved != active.Path {
		d.warn("link is stale", fmt.Sprintf("poetry's active environment is %s", active.Path), "envlink link --env automatic")
	}
}

func (d *doctor) checkHistory() {
	st, err := d.s.openExistingStore()
	if errors.Is(err, store.ErrNotInitialized) {
		d.ok("link history", "empty")
		return
	}
	if err != nil {
		d.warn("link history unreadable", err.Error(), "")
		return
	}
	defer st.Close()

	count, err := st.CountLinkEvents()
	if err != nil {
		d.warn("link history unreadable", err.Error(), "")
		return
	}
	d.ok("link history", fmt.Sprintf("%d event(s) in %s", count, d.s.cfg.DB.Path))
}
