package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/envlink/internal/config"
	"github.com/blackwell-systems/envlink/internal/link"
	"github.com/blackwell-systems/envlink/internal/log"
	"github.com/blackwell-systems/envlink/internal/logger"
	"github.com/blackwell-systems/envlink/internal/poetry"
	"github.com/blackwell-systems/envlink/internal/runner"
	"github.com/blackwell-systems/envlink/internal/store"
)

// session carries everything a command needs. It is built once per command
// invocation and passed explicitly; nothing reads configuration globally.
type session struct {
	cfg      *config.Application
	fs       afero.Fs
	run      runner.Runner
	lookPath func(string) (string, error)
	out      io.Writer
	errOut   io.Writer
	workDir  string
}

// newSession loads configuration, sets up logging and captures the working
// directory for cmd.
func newSession(cmd *cobra.Command) (*session, error) {
	fs := afero.NewOsFs()

	v := viper.New()
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return nil, err
	}

	cfg, err := config.Load(fs, v, cliOpts)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}
	log.Debugf("application config:\n%s", cfg)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	return &session{
		cfg:      cfg,
		fs:       fs,
		run:      runner.ExecRunner{},
		lookPath: exec.LookPath,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		workDir:  wd,
	}, nil
}

// flagKeys maps persistent flags onto config keys. Flags only override the
// config file when set explicitly.
var flagKeys = map[string]string{
	"quiet": "quiet",
	"db":    "db.path",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("flag --%s is not registered", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func setupLogging(cfg *config.Application) error {
	logCfg := logger.LogrusConfig{
		EnableConsole: (cfg.Log.FileLocation == "" || cfg.CliOptions.Verbosity > 0) && !cfg.Quiet,
		EnableFile:    cfg.Log.FileLocation != "",
		Structured:    cfg.Log.Structured,
		Level:         cfg.Log.LevelOpt,
		FileLocation:  cfg.Log.FileLocation,
	}
	l, err := logger.NewLogrusLogger(logCfg)
	if err != nil {
		return err
	}
	log.Set(l)
	return nil
}

// progressWriter is where spinners draw; quiet mode discards them.
func (s *session) progressWriter() io.Writer {
	if s.cfg.Quiet || s.errOut == nil {
		return io.Discard
	}
	return s.errOut
}

func (s *session) poetry() *poetry.Client {
	return poetry.NewClient(s.run, s.cfg.Poetry)
}

func (s *session) replacer() (*link.Replacer, error) {
	return link.NewReplacer(s.fs, s.workDir, s.cfg.Link)
}

// openStore opens the history database, creating it and its schema if needed.
func (s *session) openStore() (*store.Store, error) {
	if err := s.fs.MkdirAll(filepath.Dir(s.cfg.DB.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	st, err := store.New(s.cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// openExistingStore opens the history database without creating it.
func (s *session) openExistingStore() (*store.Store, error) {
	exists, err := afero.Exists(s.fs, s.cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotInitialized
	}
	return store.New(s.cfg.DB.Path)
}

// recordEvent stores a link event. History is best effort and never fails a link.
func (s *session) recordEvent(event *store.LinkEvent) {
	st, err := s.openStore()
	if err != nil {
		log.Warnf("link history unavailable: %v", err)
		return
	}
	defer st.Close()

	if _, err := st.InsertLinkEvent(event); err != nil {
		log.Warnf("failed to record link event: %v", err)
	}
}

// currentTarget returns the link's current target, or "" when there is no link.
func currentTarget(r *link.Replacer) string {
	target, ok, err := r.Inspect()
	if err != nil {
		if !errors.Is(err, link.ErrNotALink) {
			log.Warnf("cannot read current link: %v", err)
		}
		return ""
	}
	if !ok {
		return ""
	}
	return target
}
