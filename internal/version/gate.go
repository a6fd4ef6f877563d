package version

import (
	"regexp"
	"strings"

	"github.com/blackwell-systems/envlink/internal/envlinkerr"
)

// versionPattern matches the first digit and everything after it.
var versionPattern = regexp.MustCompile(`(\d.*)`)

// Extract pulls a version string out of raw tool output such as
// "Poetry (version 1.8.2)". Only the first whitespace-delimited token of the
// match is kept, with trailing punctuation removed.
func Extract(output string) (string, error) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", envlinkerr.NewConfigurationError("version string not found in output %q", output)
	}
	token := strings.Fields(match[1])[0]
	token = strings.TrimRight(token, "),;:")
	return token, nil
}

// Check returns an UnsupportedVersionError when current is older than minimum.
func Check(tool string, current, minimum *Version) error {
	cmp, err := current.Compare(minimum)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return &envlinkerr.UnsupportedVersionError{
			Tool:    tool,
			Current: current.String(),
			Minimum: minimum.String(),
		}
	}
	return nil
}

// Gate extracts the version from tool output and checks it against minimum.
// It returns the parsed current version when the gate passes.
func Gate(tool, output, minimum string, format Format) (*Version, error) {
	raw, err := Extract(output)
	if err != nil {
		return nil, err
	}
	current, err := New(raw, format)
	if err != nil {
		return nil, err
	}
	floor, err := New(minimum, format)
	if err != nil {
		return nil, err
	}
	if err := Check(tool, current, floor); err != nil {
		return nil, err
	}
	return current, nil
}
