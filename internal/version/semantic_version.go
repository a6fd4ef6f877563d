package version

import (
	"fmt"
	"strings"

	hashiVer "github.com/hashicorp/go-version"
)

var _ Comparator = (*semanticVersion)(nil)

type semanticVersion struct {
	verObj *hashiVer.Version
}

func newSemanticVersion(raw string) (*semanticVersion, error) {
	verObj, err := hashiVer.NewVersion(strings.TrimPrefix(strings.TrimSpace(raw), "v"))
	if err != nil {
		return nil, fmt.Errorf("unable to create semver obj: %w", err)
	}
	return &semanticVersion{
		verObj: verObj,
	}, nil
}

func (v *semanticVersion) Compare(other *Version) (int, error) {
	if other.Format != SemanticFormat {
		return -1, fmt.Errorf("unable to compare semantic version to given format: %s", other.Format)
	}
	if other.rich.semVer == nil {
		return -1, fmt.Errorf("given empty semanticVersion object")
	}

	return v.verObj.Compare(other.rich.semVer.verObj), nil
}
