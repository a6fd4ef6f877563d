// Package version parses and compares tool version strings.
//
// Python tooling (Poetry) follows PEP 440, which gives a total ordering over
// release segments, pre-releases (a < b < rc), final releases, post-releases and
// dev releases, so "1.0.0b2" < "1.0.0" < "1.2.3.post1". Other helpers are
// compared as semantic versions.
package version

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/envlink/internal/envlinkerr"
)

var ErrFormatMismatch = errors.New("cannot compare versions of different formats")

// Comparator compares this version to another version.
// It returns -1, 0, or 1 if this version is smaller, equal, or larger than the other.
type Comparator interface {
	Compare(*Version) (int, error)
}

// Version is a parsed version string of a known Format.
type Version struct {
	Raw    string
	Format Format
	rich   rich
}

type rich struct {
	pep440 *pep440Version
	semVer *semanticVersion
}

// New parses raw according to format.
func New(raw string, format Format) (*Version, error) {
	v := &Version{Raw: raw, Format: format}
	switch format {
	case PEP440Format:
		p, err := newPep440Version(raw)
		if err != nil {
			return nil, &envlinkerr.ConfigurationError{Reason: fmt.Sprintf("invalid %s version %q", format, raw), Err: err}
		}
		v.rich.pep440 = &p
	case SemanticFormat:
		s, err := newSemanticVersion(raw)
		if err != nil {
			return nil, &envlinkerr.ConfigurationError{Reason: fmt.Sprintf("invalid %s version %q", format, raw), Err: err}
		}
		v.rich.semVer = s
	default:
		return nil, fmt.Errorf("unsupported version format: %s", format)
	}
	return v, nil
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than other.
func (v *Version) Compare(other *Version) (int, error) {
	if other == nil {
		return -1, errors.New("no version provided for comparison")
	}
	if v.Format != other.Format {
		return -1, fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, v.Format, other.Format)
	}

	var c Comparator
	switch v.Format {
	case PEP440Format:
		c = v.rich.pep440
	case SemanticFormat:
		c = v.rich.semVer
	default:
		return -1, fmt.Errorf("unsupported version format: %s", v.Format)
	}
	return c.Compare(other)
}

// String returns the normalized form of the version.
func (v *Version) String() string {
	switch {
	case v.rich.pep440 != nil:
		return v.rich.pep440.obj.String()
	case v.rich.semVer != nil:
		return v.rich.semVer.verObj.String()
	default:
		return v.Raw
	}
}
