package index

import (
	"regexp"
	"strings"
)

// UnitID is a normalized unit identifier, safe to derive a collection
// name from. Always construct it through NormalizeUnit.
type UnitID string

var invalidUnitChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// NormalizeUnit canonicalizes an operator-assigned unit number:
// surrounding whitespace is trimmed, unsafe runes become underscores
// and the result is lowercased. Two raw strings that normalize equally
// refer to the same unit.
func NormalizeUnit(raw string) UnitID {
	s := invalidUnitChars.ReplaceAllString(strings.TrimSpace(raw), "_")
	return UnitID(strings.ToLower(s))
}

// Collection returns the Qdrant collection name owned by this unit.
func (u UnitID) Collection() string {
	return collectionPrefix + string(u)
}

// unitFromCollection recovers the normalized unit id from a collection
// name, reporting false for collections outside the unit namespace.
func unitFromCollection(name string) (string, bool) {
	if !strings.HasPrefix(name, collectionPrefix) {
		return "", false
	}
	return strings.TrimPrefix(name, collectionPrefix), true
}
