// Package coord provides validated coordinates for modules in a multi-module
// project: the versionless [Key] ("group:artifact") and the Maven-style
// [Version] with snapshot handling and next-version arithmetic.
//
// All types in this package are immutable. Zero values are empty, use the
// constructor functions (NewKey, ParseKey, NewVersion) to build valid values.
//
// # Validation Patterns
//
// Group and artifact identifiers must match: [A-Za-z0-9_.-]+
package coord

import (
	"fmt"
	"regexp"
	"strings"
)

// Key is the versionless identity of a module: group plus artifact.
type Key struct {
	group    string
	artifact string
}

var identRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// NewKey creates a validated Key.
func NewKey(group, artifact string) (Key, error) {
	if group == "" {
		return Key{}, fmt.Errorf("group cannot be empty")
	}
	if artifact == "" {
		return Key{}, fmt.Errorf("artifact cannot be empty")
	}
	if !identRegex.MatchString(group) {
		return Key{}, fmt.Errorf("invalid group %q: must match pattern [A-Za-z0-9_.-]+", group)
	}
	if !identRegex.MatchString(artifact) {
		return Key{}, fmt.Errorf("invalid artifact %q: must match pattern [A-Za-z0-9_.-]+", artifact)
	}
	return Key{group: group, artifact: artifact}, nil
}

// MustKey creates a Key or panics. Use only for constants/tests.
func MustKey(group, artifact string) Key {
	k, err := NewKey(group, artifact)
	if err != nil {
		panic(err)
	}
	return k
}

// ParseKey parses the normalized "group:artifact" form.
func ParseKey(s string) (Key, error) {
	group, artifact, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("invalid key %q: missing ':'", s)
	}
	if strings.Contains(artifact, ":") {
		return Key{}, fmt.Errorf("invalid key %q: too many ':' separators", s)
	}
	k, err := NewKey(group, artifact)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return k, nil
}

// String returns the normalized "group:artifact" form used as map key.
func (k Key) String() string {
	if k.IsEmpty() {
		return ""
	}
	return k.group + ":" + k.artifact
}

// Group returns the group component.
func (k Key) Group() string {
	return k.group
}

// Artifact returns the artifact component.
func (k Key) Artifact() string {
	return k.artifact
}

// IsEmpty returns true if this is a zero-value Key.
func (k Key) IsEmpty() bool {
	return k.group == "" && k.artifact == ""
}
