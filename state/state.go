// Package state persists the version maps a workflow needs across steps:
// the last released version of every module (hotfix baseline) and the
// versions in place before a hotfix started (restored when it finishes).
package state

import (
	"maps"
)

// CurrentVersion is the state file format version written by this package.
const CurrentVersion = 1

// DefaultFileName is the state file name inside a project directory.
const DefaultFileName = ".relflow-state.toml"

// State is the persisted flow state.
type State struct {
	Version int `toml:"version"`

	// LastReleaseVersions maps module keys to their last released version.
	LastReleaseVersions map[string]string `toml:"last_release_versions"`

	// PreHotfixVersions maps module keys to the versions recorded when the
	// running hotfix started. Empty when no hotfix is in progress.
	PreHotfixVersions map[string]string `toml:"pre_hotfix_versions"`
}

// New returns an empty state.
func New() *State {
	return &State{
		Version:             CurrentVersion,
		LastReleaseVersions: make(map[string]string),
		PreHotfixVersions:   make(map[string]string),
	}
}

// RecordRelease merges released versions into LastReleaseVersions.
func (s *State) RecordRelease(versions map[string]string) {
	maps.Copy(s.LastReleaseVersions, versions)
}

// RecordPreHotfix replaces PreHotfixVersions.
func (s *State) RecordPreHotfix(versions map[string]string) {
	s.PreHotfixVersions = maps.Clone(versions)
	if s.PreHotfixVersions == nil {
		s.PreHotfixVersions = make(map[string]string)
	}
}

// ClearPreHotfix forgets the pre-hotfix versions.
func (s *State) ClearPreHotfix() {
	clear(s.PreHotfixVersions)
}
