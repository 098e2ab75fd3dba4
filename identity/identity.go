package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	matchNamespace  = uuid.MustParse("6f1c7e7a-2b3d-4c55-9a8e-3d1f0b2c4e6a")
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)

// MatchKey derives a stable identifier for a property/client pairing so that
// re-running the matcher upserts the same row instead of accumulating duplicates.
func MatchKey(propertyID, clientID uuid.UUID) uuid.UUID {
	name := make([]byte, 0, 32)
	name = append(name, propertyID[:]...)
	name = append(name, clientID[:]...)
	return uuid.NewSHA1(matchNamespace, name)
}

// NormalizeLabel lowercases a city, zone or type label and collapses whitespace.
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return multiSpaceRegex.ReplaceAllString(s, " ")
}

// SameLabel compares two labels case and whitespace insensitively.
// Empty labels never match.
func SameLabel(a, b string) bool {
	na := NormalizeLabel(a)
	return na != "" && na == NormalizeLabel(b)
}

// ContainsLabel reports whether any of the candidates equals label.
func ContainsLabel(candidates []string, label string) bool {
	for _, c := range candidates {
		if SameLabel(c, label) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	n := NormalizeLabel(needle)
	if n == "" {
		return false
	}
	return strings.Contains(NormalizeLabel(haystack), n)
}
