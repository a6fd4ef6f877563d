// Package pyproject reads the parts of pyproject.toml envlink cares about.
package pyproject

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FileName is the project metadata file looked up in the working directory.
const FileName = "pyproject.toml"

// ErrNotFound is returned when the directory has no pyproject.toml.
var ErrNotFound = errors.New("pyproject.toml not found")

var (
	separatorRun = regexp.MustCompile(`[-_.]+`)
	unsafeChars  = regexp.MustCompile("[ $`!*@\"\\\\\r\n\t]")
	envSuffix    = regexp.MustCompile(`^.{8}-py\d+\.\d+$`)
)

// maxNameLength is how much of the sanitized name Poetry keeps in env names.
const maxNameLength = 42

// Project holds the fields of pyproject.toml used for environment checks.
type Project struct {
	Path    string
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry *struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Load parses <dir>/pyproject.toml.
func Load(fs afero.Fs, dir string) (*Project, error) {
	path := filepath.Join(dir, FileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	p.Path = path
	return &p, nil
}

// IsPoetry reports whether the file has a [tool.poetry] table.
func (p *Project) IsPoetry() bool {
	return p.Tool.Poetry != nil
}

// Name returns the project name, preferring [tool.poetry].
func (p *Project) Name() string {
	if p.Tool.Poetry != nil && p.Tool.Poetry.Name != "" {
		return p.Tool.Poetry.Name
	}
	return p.Project.Name
}

// EnvPrefix returns the prefix Poetry gives this project's environment
// directories: the normalized name, sanitized and truncated.
func (p *Project) EnvPrefix() string {
	name := strings.ToLower(separatorRun.ReplaceAllString(p.Name(), "-"))
	name = unsafeChars.ReplaceAllString(name, "_")
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

// MatchesEnvironment reports whether envPath looks like one of this project's
// Poetry environments, either "<prefix>-<hash>-pyX.Y" or an in-project .venv.
func (p *Project) MatchesEnvironment(envPath string) bool {
	base := filepath.Base(filepath.Clean(envPath))
	if base == ".venv" {
		return true
	}
	prefix := p.EnvPrefix()
	if prefix == "" || !strings.HasPrefix(base, prefix+"-") {
		return false
	}
	return envSuffix.MatchString(strings.TrimPrefix(base, prefix+"-"))
}
