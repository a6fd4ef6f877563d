// Package config loads envlink's application configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML config
// file, ENVLINK_* environment variables and command-line flags bound into the
// same viper instance. The resulting Application is passed explicitly to each
// component; nothing reads viper after Load returns.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/blackwell-systems/envlink/internal/logger"
)

// ApplicationName is used for the config file name, env prefix and data directory.
const ApplicationName = "envlink"

// AutomaticDiscovery is the --env sentinel that triggers active environment discovery.
const AutomaticDiscovery = "automatic"

var ErrApplicationConfigNotFound = errors.New("application config not found")

type defaultValueLoader interface {
	loadDefaultValues(*viper.Viper)
}

type parser interface {
	parseConfigValues() error
}

// CliOnlyOptions are values that only make sense on the command line.
type CliOnlyOptions struct {
	ConfigPath string
	Verbosity  int
}

// Application is the complete envlink configuration.
type Application struct {
	ConfigPath string         `yaml:",omitempty" mapstructure:"-"`
	Quiet      bool           `yaml:"quiet" mapstructure:"quiet"`
	CliOptions CliOnlyOptions `yaml:"-" mapstructure:"-"`
	Link       Link           `yaml:"link" mapstructure:"link"`
	Poetry     Poetry         `yaml:"poetry" mapstructure:"poetry"`
	Bluetooth  Bluetooth      `yaml:"bluetooth" mapstructure:"bluetooth"`
	Watch      Watch          `yaml:"watch" mapstructure:"watch"`
	Log        Logging        `yaml:"log" mapstructure:"log"`
	DB         Database       `yaml:"db" mapstructure:"db"`
}

// Link configures the symlink envlink maintains in the working directory.
type Link struct {
	Name   string   `yaml:"name" mapstructure:"name"`     // well-known link name
	Legacy []string `yaml:"legacy" mapstructure:"legacy"` // other names cleared before linking
}

func (cfg Link) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("link.name", "venv")
	v.SetDefault("link.legacy", []string{"virtualenv"})
}

func (cfg *Link) parseConfigValues() error {
	if cfg.Name == "" {
		return fmt.Errorf("link.name must not be empty")
	}
	for _, name := range append([]string{cfg.Name}, cfg.Legacy...) {
		if strings.ContainsRune(name, filepath.Separator) || name == "." || name == ".." {
			return fmt.Errorf("link name %q must be a plain file name", name)
		}
	}
	return nil
}

// Poetry configures how the Poetry CLI is invoked and interpreted.
type Poetry struct {
	Binary         string `yaml:"binary" mapstructure:"binary"`
	MinimumVersion string `yaml:"minimum-version" mapstructure:"minimum-version"`
	ActiveMarker   string `yaml:"active-marker" mapstructure:"active-marker"`
}

func (cfg Poetry) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("poetry.binary", "poetry")
	v.SetDefault("poetry.minimum-version", "1.0.0b2")
	v.SetDefault("poetry.active-marker", "(Activated)")
}

func (cfg *Poetry) parseConfigValues() error {
	if strings.TrimSpace(cfg.ActiveMarker) == "" {
		return fmt.Errorf("poetry.active-marker must not be empty")
	}
	return nil
}

// Bluetooth configures the Bluetooth restart command.
type Bluetooth struct {
	Method          string `yaml:"method" mapstructure:"method"`
	Kext            string `yaml:"kext" mapstructure:"kext"`
	Blueutil        string `yaml:"blueutil" mapstructure:"blueutil"`
	MinimumBlueutil string `yaml:"minimum-blueutil" mapstructure:"minimum-blueutil"`
}

func (cfg Bluetooth) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("bluetooth.method", "blueutil")
	v.SetDefault("bluetooth.kext", "com.apple.iokit.BroadcomBluetoothHostControllerUSBTransport")
	v.SetDefault("bluetooth.blueutil", "blueutil")
	v.SetDefault("bluetooth.minimum-blueutil", "2.0.0")
}

func (cfg *Bluetooth) parseConfigValues() error {
	switch cfg.Method {
	case "kext", "blueutil":
		return nil
	default:
		return fmt.Errorf("bad bluetooth.method %q (want kext or blueutil)", cfg.Method)
	}
}

// Watch configures watch mode.
type Watch struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

func (cfg Watch) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("watch.debounce", 2*time.Second)
}

// Logging contains all logging-related configuration options.
type Logging struct {
	Structured   bool         `yaml:"structured" mapstructure:"structured"` // show all log entries as JSON formatted strings
	Level        string       `yaml:"level" mapstructure:"level"`           // the log level string hint
	FileLocation string       `yaml:"file" mapstructure:"file"`             // the file path to write logs to
	LevelOpt     logrus.Level `yaml:"-" mapstructure:"-"`
}

func (cfg Logging) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.structured", false)
}

func (cfg *Logging) parseConfigValues() error {
	if cfg.FileLocation == "" {
		return nil
	}
	expanded, err := homedir.Expand(cfg.FileLocation)
	if err != nil {
		return fmt.Errorf("unable to expand log file path %q: %w", cfg.FileLocation, err)
	}
	cfg.FileLocation = expanded
	return nil
}

// Database configures the link history database.
type Database struct {
	Path string `yaml:"path" mapstructure:"path"`
}

func (cfg Database) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("db.path", filepath.Join(xdg.DataHome, ApplicationName, "history.db"))
}

func (cfg *Database) parseConfigValues() error {
	expanded, err := homedir.Expand(cfg.Path)
	if err != nil {
		return fmt.Errorf("unable to expand db path %q: %w", cfg.Path, err)
	}
	cfg.Path = expanded
	return nil
}

// Load reads the application config. A missing config file is not an error;
// defaults and bound flags are used instead.
func Load(fs afero.Fs, v *viper.Viper, cliOpts CliOnlyOptions) (*Application, error) {
	cfg := &Application{CliOptions: cliOpts}
	cfg.loadDefaultValues(v)

	if err := readConfig(fs, v, cliOpts.ConfigPath); err != nil && !errors.Is(err, ErrApplicationConfigNotFound) {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.parseConfigValues(); err != nil {
		return nil, fmt.Errorf("invalid application config: %w", err)
	}

	return cfg, nil
}

func (cfg Application) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("quiet", false)

	// note: the defaultValueLoader method receiver is NOT a pointer receiver.
	value := reflect.ValueOf(cfg)
	for i := 0; i < value.NumField(); i++ {
		if loadable, ok := value.Field(i).Interface().(defaultValueLoader); ok {
			loadable.loadDefaultValues(v)
		}
	}
}

func (cfg *Application) parseConfigValues() error {
	if err := cfg.parseLogLevelOption(); err != nil {
		return err
	}

	// note: parser is implemented on pointer receivers, so take the field address.
	value := reflect.ValueOf(cfg).Elem()
	for i := 0; i < value.NumField(); i++ {
		if parsable, ok := value.Field(i).Addr().Interface().(parser); ok {
			if err := parsable.parseConfigValues(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cfg *Application) parseLogLevelOption() error {
	switch {
	case cfg.Quiet:
		cfg.Log.LevelOpt = logrus.PanicLevel
	case cfg.CliOptions.Verbosity > 0:
		cfg.Log.LevelOpt = logger.LevelFromVerbosity(cfg.CliOptions.Verbosity)
	case cfg.Log.Level != "":
		lvl, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level))
		if err != nil {
			return fmt.Errorf("bad log level %q: %w", cfg.Log.Level, err)
		}
		cfg.Log.LevelOpt = lvl
	default:
		cfg.Log.LevelOpt = logrus.WarnLevel
	}
	cfg.Log.Level = cfg.Log.LevelOpt.String()
	return nil
}

func (cfg Application) String() string {
	// yaml is pretty human friendly (at least when compared to json)
	appCfgStr, err := yaml.Marshal(&cfg)
	if err != nil {
		return err.Error()
	}
	return string(appCfgStr)
}

// readConfig reads the explicitly given config path, or else the first config
// file found among the well-known locations.
func readConfig(fs afero.Fs, v *viper.Viper, configPath string) error {
	v.SetFs(fs)
	v.AutomaticEnv()
	v.SetEnvPrefix(ApplicationName)
	// allow nested options via environment variables, e.g. poetry.minimum-version = ENVLINK_POETRY_MINIMUM_VERSION
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configPath != "" {
		expanded, err := homedir.Expand(configPath)
		if err != nil {
			return fmt.Errorf("unable to expand config path %q: %w", configPath, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read application config=%q : %w", expanded, err)
		}
		return nil
	}

	for _, candidate := range configCandidates() {
		exists, err := afero.Exists(fs, candidate)
		if err != nil || !exists {
			continue
		}
		v.SetConfigFile(candidate)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to parse config=%q: %w", candidate, err)
		}
		return nil
	}

	return ErrApplicationConfigNotFound
}

// configCandidates lists config file locations in search order.
func configCandidates() []string {
	candidates := []string{
		"." + ApplicationName + ".yaml",
		filepath.Join("."+ApplicationName, "config.yaml"),
	}
	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "."+ApplicationName+".yaml"))
	}
	candidates = append(candidates, filepath.Join(xdg.ConfigHome, ApplicationName, "config.yaml"))
	for _, dir := range xdg.ConfigDirs {
		candidates = append(candidates, filepath.Join(dir, ApplicationName, "config.yaml"))
	}
	return candidates
}
