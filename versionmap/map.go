// Package versionmap computes the target version of every module for one
// workflow operation.
//
// A [Map] is an immutable mapping from normalized module key
// ("group:artifact") to version. A Map may be declared consistent: the caller
// asserts that every real value in it is identical, so a lookup miss may be
// answered with any value of the map. An empty consistent map never answers a
// miss.
//
// The [Builder] derives maps for each operation kind (release, hotfix,
// development, previous-version restore) from the reactor's current versions
// through a pluggable [Resolver]. The snapshot conversions
// ([ReleaseSnapshot], [ReleaseFromSnapshot], [HotfixSnapshot],
// [HotfixFromSnapshot]) are targeted: only entries matching the label take
// part, all other entries pass through unchanged.
package versionmap

import (
	"maps"
	"slices"
)

// Map is an immutable module key to version mapping.
type Map struct {
	versions   map[string]string
	consistent bool
}

// New copies versions into a Map.
func New(versions map[string]string) Map {
	return Map{versions: maps.Clone(versions)}
}

// NewConsistent copies versions into a Map declared consistent.
func NewConsistent(versions map[string]string) Map {
	return Map{versions: maps.Clone(versions), consistent: true}
}

// WithConsistent returns a copy of m with the consistency flag set to c.
func (m Map) WithConsistent(c bool) Map {
	return Map{versions: m.versions, consistent: c}
}

// Consistent reports whether all values of the map are asserted identical.
func (m Map) Consistent() bool {
	return m.consistent
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.versions)
}

// Get returns the version recorded for key. Empty values count as missing.
func (m Map) Get(key string) (string, bool) {
	v, ok := m.versions[key]
	return v, ok && v != ""
}

// Lookup returns the version for key. On a miss in a non-empty consistent map
// it returns a value of the map instead; which one is unspecified, since all
// are asserted equal. The smallest key's value is used so results are stable.
func (m Map) Lookup(key string) (string, bool) {
	if v, ok := m.Get(key); ok {
		return v, true
	}
	if !m.consistent {
		return "", false
	}
	for _, k := range m.Keys() {
		if v := m.versions[k]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m.versions))
}

// ToMap returns a copy of the entries.
func (m Map) ToMap() map[string]string {
	return maps.Clone(m.versions)
}

// Transform applies fn to every value, keeping keys and the consistency flag.
func (m Map) Transform(fn func(string) string) Map {
	out := make(map[string]string, len(m.versions))
	for k, v := range m.versions {
		out[k] = fn(v)
	}
	return Map{versions: out, consistent: m.consistent}
}
