package coord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SnapshotSuffix marks a working (not yet released) version.
const SnapshotSuffix = "-SNAPSHOT"

// Version represents a Maven-style module version.
// Format: N[.N]*[-QUALIFIER][-SNAPSHOT]
// Versions whose leading segment is not numeric (e.g. "${revision}") are
// accepted as opaque: they compare lexically and cannot be incremented.
type Version struct {
	raw        string
	components []int
	qualifier  string
	snapshot   bool
}

// numericRegex captures the dotted numeric head and the optional qualifier.
var numericRegex = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:[-.]?([A-Za-z0-9][A-Za-z0-9._-]*))?$`)

// timestampSnapshotRegex matches deployed snapshot versions like 1.0-20240102.101010-3.
var timestampSnapshotRegex = regexp.MustCompile(`-\d{8}\.\d{6}-\d+$`)

// NewVersion parses a version string.
func NewVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, fmt.Errorf("version cannot be empty")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return Version{}, fmt.Errorf("invalid version %q: contains whitespace", s)
	}

	v := Version{raw: s}
	body := s
	if hasSnapshotSuffix(s) {
		v.snapshot = true
		body = s[:len(s)-len(SnapshotSuffix)]
	} else if strings.EqualFold(s, "SNAPSHOT") || timestampSnapshotRegex.MatchString(s) {
		v.snapshot = true
	}

	matches := numericRegex.FindStringSubmatch(body)
	if matches == nil {
		// Opaque version, e.g. a property reference
		return v, nil
	}
	for part := range strings.SplitSeq(matches[1], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		v.components = append(v.components, n)
	}
	v.qualifier = matches[2]
	return v, nil
}

// MustVersion creates a Version or panics. Use only for constants/tests.
func MustVersion(s string) Version {
	v, err := NewVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func hasSnapshotSuffix(s string) bool {
	return len(s) > len(SnapshotSuffix) && strings.EqualFold(s[len(s)-len(SnapshotSuffix):], SnapshotSuffix)
}

// IsSnapshotString reports whether s denotes a snapshot version.
func IsSnapshotString(s string) bool {
	return hasSnapshotSuffix(s) || strings.EqualFold(s, "SNAPSHOT") || timestampSnapshotRegex.MatchString(s)
}

// String returns the version string.
func (v Version) String() string {
	return v.raw
}

// IsEmpty returns true if this is a zero-value Version.
func (v Version) IsEmpty() bool {
	return v.raw == ""
}

// IsSnapshot returns true for -SNAPSHOT and timestamped snapshot versions.
func (v Version) IsSnapshot() bool {
	return v.snapshot
}

// IsOpaque returns true if the version has no numeric head.
func (v Version) IsOpaque() bool {
	return len(v.components) == 0
}

// Components returns a copy of the numeric components.
func (v Version) Components() []int {
	out := make([]int, len(v.components))
	copy(out, v.components)
	return out
}

// Qualifier returns the qualifier (e.g. "beta-1"), without the snapshot marker.
func (v Version) Qualifier() string {
	return v.qualifier
}

// Release returns the version with a trailing -SNAPSHOT removed.
// Non-snapshot versions are returned unchanged.
func (v Version) Release() Version {
	if !hasSnapshotSuffix(v.raw) {
		return v
	}
	r := v
	r.raw = v.raw[:len(v.raw)-len(SnapshotSuffix)]
	r.snapshot = false
	return r
}

// NextDevelopment returns the next snapshot after the release form of v.
// A trailing numeric qualifier part is incremented ("1.0-beta-1" becomes
// "1.0-beta-2-SNAPSHOT"), otherwise the last numeric component is.
func (v Version) NextDevelopment() (Version, error) {
	if v.IsOpaque() {
		return Version{}, fmt.Errorf("cannot compute next development version of %q", v.raw)
	}
	r := v.Release()
	comps := r.Components()
	qualifier := r.qualifier

	if head, n, ok := splitTrailingNumber(qualifier); ok {
		qualifier = head + strconv.Itoa(n+1)
	} else {
		comps[len(comps)-1]++
	}
	return NewVersion(format(comps, qualifier) + SnapshotSuffix)
}

// NextHotfix returns the hotfix release following the release form of v.
// Versions with fewer than three components are padded ("1.0" becomes
// "1.0.1"); otherwise the last component is incremented. The qualifier is
// dropped.
func (v Version) NextHotfix() (Version, error) {
	if v.IsOpaque() {
		return Version{}, fmt.Errorf("cannot compute hotfix version of %q", v.raw)
	}
	comps := v.Release().Components()
	if len(comps) < 3 {
		for len(comps) < 3 {
			comps = append(comps, 0)
		}
		comps[2] = 1
	} else {
		comps[len(comps)-1]++
	}
	return NewVersion(format(comps, ""))
}

func format(comps []int, qualifier string) string {
	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = strconv.Itoa(c)
	}
	s := strings.Join(parts, ".")
	if qualifier != "" {
		s += "-" + qualifier
	}
	return s
}

// splitTrailingNumber splits "beta-12" into ("beta-", 12).
func splitTrailingNumber(s string) (string, int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) || i == 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return "", 0, false
	}
	return s[:i], n, true
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
// Missing components count as zero, a qualified version sorts before the
// plain one, and a snapshot sorts before its release.
func (v Version) Compare(other Version) int {
	if v.IsOpaque() || other.IsOpaque() {
		return strings.Compare(v.raw, other.raw)
	}
	for i := range max(len(v.components), len(other.components)) {
		a, b := componentAt(v.components, i), componentAt(other.components, i)
		if a != b {
			return intCompare(a, b)
		}
	}

	if v.qualifier == "" && other.qualifier != "" {
		return 1
	}
	if v.qualifier != "" && other.qualifier == "" {
		return -1
	}
	if v.qualifier != other.qualifier {
		return compareQualifier(v.qualifier, other.qualifier)
	}

	switch {
	case v.snapshot == other.snapshot:
		return 0
	case v.snapshot:
		return -1
	default:
		return 1
	}
}

// Less returns true if v < other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func componentAt(comps []int, i int) int {
	if i < len(comps) {
		return comps[i]
	}
	return 0
}

func intCompare(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func compareQualifier(a, b string) int {
	aParts := strings.FieldsFunc(a, isQualifierSep)
	bParts := strings.FieldsFunc(b, isQualifierSep)

	for i := range min(len(aParts), len(bParts)) {
		aNum, aIsNum := tryParseInt(aParts[i])
		bNum, bIsNum := tryParseInt(bParts[i])

		if aIsNum && bIsNum {
			if aNum != bNum {
				return intCompare(aNum, bNum)
			}
		} else if aIsNum {
			return -1 // Numeric < alphanumeric
		} else if bIsNum {
			return 1
		} else {
			if c := strings.Compare(strings.ToLower(aParts[i]), strings.ToLower(bParts[i])); c != 0 {
				return c
			}
		}
	}

	return intCompare(len(aParts), len(bParts))
}

func isQualifierSep(r rune) bool {
	return r == '.' || r == '-' || r == '_'
}

func tryParseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
