package pathutils

import (
	"path/filepath"
	"strings"
)

const (
	doubleQuoteConstant = `"`
	singleQuoteConstant = `'`
)

// RootNormalizer prepares operator-supplied directory paths for filesystem checks.
type RootNormalizer struct {
	homeExpander *HomeExpander
}

// NewRootNormalizer constructs a RootNormalizer; a nil expander falls back to the operating system home lookup.
func NewRootNormalizer(homeExpander *HomeExpander) *RootNormalizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RootNormalizer{homeExpander: homeExpander}
}

// Normalize trims whitespace and a single layer of matching quotes, expands the
// home directory, and cleans the result. Empty input yields an empty string.
func (normalizer *RootNormalizer) Normalize(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	trimmedPath = trimMatchingQuotes(trimmedPath)
	if len(trimmedPath) == 0 {
		return ""
	}

	expandedPath := trimmedPath
	if normalizer != nil {
		expandedPath = normalizer.homeExpander.Expand(trimmedPath)
	}

	return filepath.Clean(expandedPath)
}

func trimMatchingQuotes(candidate string) string {
	for _, quote := range []string{doubleQuoteConstant, singleQuoteConstant} {
		if len(candidate) >= 2 && strings.HasPrefix(candidate, quote) && strings.HasSuffix(candidate, quote) {
			return strings.TrimSpace(candidate[1 : len(candidate)-1])
		}
	}
	return candidate
}
