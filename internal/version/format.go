package version

import "strings"

const (
	UnknownFormat Format = iota
	PEP440Format
	SemanticFormat
)

// Format selects the comparison rules for a version string.
type Format int

var formatStr = []string{
	"UnknownFormat",
	"PEP440",
	"Semantic",
}

func ParseFormat(userStr string) Format {
	switch strings.ToLower(userStr) {
	case strings.ToLower(PEP440Format.String()), "python", "poetry":
		return PEP440Format
	case strings.ToLower(SemanticFormat.String()), "semver":
		return SemanticFormat
	}
	return UnknownFormat
}

func (f Format) String() string {
	if int(f) >= len(formatStr) || f < 0 {
		return formatStr[0]
	}

	return formatStr[f]
}
