package versionmap

import (
	"strings"

	"github.com/albertocavalcante/go-relflow/coord"
)

// BranchSuffix returns "-"+suffix, or "" for a blank suffix.
func BranchSuffix(suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		return ""
	}
	return "-" + suffix
}

// ReleaseSnapshot converts release versions to their release-branch working
// form: every value equal to label (ignoring case) becomes
// value + BranchSuffix(suffix) + "-SNAPSHOT".
func ReleaseSnapshot(release Map, label, suffix string) Map {
	return toSnapshot(release, label, BranchSuffix(suffix)+coord.SnapshotSuffix)
}

// ReleaseFromSnapshot is the inverse of ReleaseSnapshot: every value equal to
// label + BranchSuffix(suffix) + "-SNAPSHOT" (ignoring case) loses that marker.
func ReleaseFromSnapshot(original Map, label, suffix string) Map {
	return fromSnapshot(original, label, BranchSuffix(suffix)+coord.SnapshotSuffix)
}

// HotfixSnapshot converts hotfix versions to their hotfix-branch working
// form: every value equal to label (ignoring case) gets "-SNAPSHOT" appended.
func HotfixSnapshot(hotfix Map, label string) Map {
	return toSnapshot(hotfix, label, coord.SnapshotSuffix)
}

// HotfixFromSnapshot is the inverse of HotfixSnapshot.
func HotfixFromSnapshot(original Map, label string) Map {
	return fromSnapshot(original, label, coord.SnapshotSuffix)
}

func toSnapshot(m Map, label, marker string) Map {
	return m.Transform(func(v string) string {
		if strings.EqualFold(v, label) {
			return v + marker
		}
		return v
	})
}

func fromSnapshot(m Map, label, marker string) Map {
	return m.Transform(func(v string) string {
		if !strings.EqualFold(v, label+marker) {
			return v
		}
		// Only the exact marker is stripped; a case-variant marker is kept.
		if i := strings.LastIndex(v, marker); i >= 0 {
			return v[:i]
		}
		return v
	})
}
