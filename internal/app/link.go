package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/config"
	"github.com/blackwell-systems/envlink/internal/envlinkerr"
	"github.com/blackwell-systems/envlink/internal/log"
	"github.com/blackwell-systems/envlink/internal/output"
	"github.com/blackwell-systems/envlink/internal/pyproject"
	"github.com/blackwell-systems/envlink/internal/store"
)

// ErrVerificationFailed is returned when the new link does not verify.
var ErrVerificationFailed = errors.New("link verification failed")

var (
	linkEnv string

	linkCmd = &cobra.Command{
		Use:   "link",
		Short: "Point ./venv at a Poetry environment",
		Long: `Clears any existing venv or virtualenv entries in the current directory and
creates a symlink named venv pointing at the Poetry environment.

The environment is either an existing directory, or 'automatic' to ask Poetry
for the active environment via 'poetry env list --full-path'. Discovery finishes
before anything in the directory is touched.

After linking, a verification report is printed. A report that is NOT OK makes
the command exit non-zero.`,
		Example: `  envlink link --env automatic
  envlink link --env /home/me/.cache/pypoetry/virtualenvs/demo-AbC123xY-py3.12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			_, err = runLink(cmd.Context(), s, linkEnv)
			return err
		},
	}
)

func init() {
	linkCmd.Flags().StringVar(&linkEnv, "env", "", fmt.Sprintf("environment directory, or %q to discover the active one", config.AutomaticDiscovery))
	_ = linkCmd.MarkFlagRequired("env")

	RootCmd.AddCommand(linkCmd)
}

// resolved is the environment a link command will point at.
type resolved struct {
	path          string
	poetryVersion string
}

// resolveEnvironment turns the --env value into an existing directory.
func resolveEnvironment(ctx context.Context, s *session, env string) (*resolved, error) {
	if env == config.AutomaticDiscovery {
		spinner := output.NewSpinner("Asking poetry for the active environment").WithElapsed()
		spinner.SetWriter(s.progressWriter())
		spinner.Start()
		active, err := s.poetry().Discover(ctx, s.fs)
		spinner.Stop()
		if err != nil {
			return nil, err
		}
		return &resolved{path: active.Path, poetryVersion: active.PoetryVersion.String()}, nil
	}

	path, err := homedir.Expand(env)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workDir, path)
	}
	path = filepath.Clean(path)

	isDir, err := afero.DirExists(s.fs, path)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, &envlinkerr.NotFoundError{What: "the location does not exist", Path: path}
	}
	// link to the real directory, never through the link being replaced
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	return &resolved{path: canonical}, nil
}

// runLink resolves the environment, replaces the link and records the event.
func runLink(ctx context.Context, s *session, env string) (*store.LinkEvent, error) {
	target, err := resolveEnvironment(ctx, s, env)
	if err != nil {
		return nil, err
	}

	checkProject(s, target.path)

	r, err := s.replacer()
	if err != nil {
		return nil, err
	}
	previous := currentTarget(r)

	report, err := r.Replace(target.path)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(s.out, output.RenderReport(report))

	if !report.OK() {
		return nil, ErrVerificationFailed
	}

	event := &store.LinkEvent{
		ProjectDir:     s.workDir,
		LinkPath:       r.Path(),
		Target:         target.path,
		PreviousTarget: previous,
		ToolVersion:    target.poetryVersion,
	}
	s.recordEvent(event)
	return event, nil
}

// checkProject warns when the environment does not look like it belongs to the
// project in the working directory. It never fails the link.
func checkProject(s *session, envPath string) {
	project, err := pyproject.Load(s.fs, s.workDir)
	switch {
	case errors.Is(err, pyproject.ErrNotFound):
		log.Warnf("no %s in %s", pyproject.FileName, s.workDir)
		return
	case err != nil:
		log.Warnf("cannot read %s: %v", pyproject.FileName, err)
		return
	}

	if !project.IsPoetry() {
		log.Warnf("%s has no [tool.poetry] table", project.Path)
	}
	if !project.MatchesEnvironment(envPath) {
		log.Warnf("environment %s does not look like it belongs to %q", filepath.Base(envPath), project.Name())
	}
}
