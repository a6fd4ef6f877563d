package poetry

import (
	"strings"

	"github.com/blackwell-systems/envlink/internal/envlinkerr"
)

// ParseEnvironments parses `poetry env list --full-path` output.
// Example input:
//
//	/home/me/.cache/pypoetry/virtualenvs/demo-AbC123-py3.11
//	/home/me/.cache/pypoetry/virtualenvs/demo-AbC123-py3.12 (Activated)
//
// Blank lines are skipped; the marker is stripped from active entries.
func ParseEnvironments(output, marker string) []Environment {
	var envs []Environment
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		active := marker != "" && strings.Contains(line, marker)
		path := line
		if active {
			path = strings.ReplaceAll(path, marker, "")
		}
		envs = append(envs, Environment{
			Path:   strings.TrimSpace(path),
			Active: active,
		})
	}
	return envs
}

// FindActive returns the path of the first environment carrying the marker.
// Later marked entries are ignored.
func FindActive(output, marker string) (string, error) {
	for _, env := range ParseEnvironments(output, marker) {
		if env.Active {
			if env.Path == "" {
				return "", &envlinkerr.NotFoundError{What: "active environment line has no path"}
			}
			return env.Path, nil
		}
	}
	return "", &envlinkerr.NotFoundError{What: "no active environment"}
}
