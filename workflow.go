package relflow

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/state"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// Cache keys of the workflow steps. Each step resolves its maps once.
const (
	keyReleaseStart  = "release-start"
	keyReleaseFinish = "release-finish"
	keyHotfixStart   = "hotfix-start"
	keyHotfixFinish  = "hotfix-finish"
	keyDevelop       = "develop"
	keyRestore       = "restore"
)

// Step is the outcome of a workflow step.
type Step struct {
	// Label is the root module's target version.
	Label string
	*Result
}

// ReleaseStart prepares a release branch: the reactor must contain a
// snapshot, and modules are moved to the release branch snapshot of their
// release version.
func (f *Flow) ReleaseStart(r *project.Reactor) (*Step, error) {
	if err := f.CheckForSnapshot(r); err != nil {
		return nil, err
	}
	label, err := f.ReleaseLabel(keyReleaseStart, r)
	if err != nil {
		return nil, err
	}
	res, err := f.UpdateWithReleaseSnapshot(keyReleaseStart, label, r)
	if err != nil {
		return nil, err
	}
	return &Step{Label: label, Result: res}, nil
}

// ReleaseFinish moves a release branch from its snapshot to the release
// version and records the released versions in st. An empty label is
// derived from the root module's version. No descriptor is touched when a
// module would keep a snapshot version.
func (f *Flow) ReleaseFinish(r *project.Reactor, label string, st *state.State) (*Step, error) {
	if label == "" {
		var err error
		if label, err = f.labelFromSnapshot(r, versionmap.BranchSuffix(f.cfg.suffix)+coord.SnapshotSuffix); err != nil {
			return nil, err
		}
	}
	original := f.builder.Original(keyReleaseFinish, r)
	if err := checkRelease(r, versionmap.ReleaseFromSnapshot(original, label, f.cfg.suffix)); err != nil {
		return nil, err
	}
	res, err := f.UpdateFromReleaseSnapshot(keyReleaseFinish, label, r)
	if err != nil {
		return nil, err
	}
	st.RecordRelease(reactorVersions(r, res.Versions))
	return &Step{Label: label, Result: res}, nil
}

// HotfixStart prepares a hotfix branch from released modules: they are moved
// to the snapshot of their hotfix version, computed from the last release
// versions recorded in st.
func (f *Flow) HotfixStart(r *project.Reactor, st *state.State) (*Step, error) {
	if err := f.CheckForRelease(r); err != nil {
		return nil, err
	}
	label, err := f.HotfixLabel(keyHotfixStart, r, st.LastReleaseVersions)
	if err != nil {
		return nil, err
	}
	res, err := f.UpdateWithHotfixSnapshot(keyHotfixStart, label, r, st.LastReleaseVersions)
	if err != nil {
		return nil, err
	}
	return &Step{Label: label, Result: res}, nil
}

// RecordPreHotfix stores the versions of the development reactor, to be
// restored by Restore once the hotfix is merged back.
func (f *Flow) RecordPreHotfix(develop *project.Reactor, st *state.State) {
	st.RecordPreHotfix(develop.Versions())
}

// HotfixFinish moves a hotfix branch from its snapshot to the hotfix version
// and records the released versions in st. An empty label is derived from
// the root module's version.
func (f *Flow) HotfixFinish(r *project.Reactor, label string, st *state.State) (*Step, error) {
	if label == "" {
		var err error
		if label, err = f.labelFromSnapshot(r, coord.SnapshotSuffix); err != nil {
			return nil, err
		}
	}
	original := f.builder.Original(keyHotfixFinish, r)
	if err := checkRelease(r, versionmap.HotfixFromSnapshot(original, label)); err != nil {
		return nil, err
	}
	res, err := f.UpdateFromHotfixSnapshot(keyHotfixFinish, label, r)
	if err != nil {
		return nil, err
	}
	st.RecordRelease(reactorVersions(r, res.Versions))
	return &Step{Label: label, Result: res}, nil
}

// Develop moves every module to its next development version.
func (f *Flow) Develop(r *project.Reactor) (*Step, error) {
	label, err := f.DevelopmentLabel(keyDevelop, r)
	if err != nil {
		return nil, err
	}
	res, err := f.UpdateWithDevelopmentVersion(keyDevelop, r)
	if err != nil {
		return nil, err
	}
	return &Step{Label: label, Result: res}, nil
}

// Restore puts back the versions recorded by RecordPreHotfix and forgets
// them.
func (f *Flow) Restore(r *project.Reactor, st *state.State) (*Step, error) {
	res, err := f.UpdateWithPreviousVersions(keyRestore, r, st.PreHotfixVersions)
	if err != nil {
		return nil, err
	}
	st.ClearPreHotfix()
	step := &Step{Result: res}
	if root, err := r.Root(); err == nil {
		step.Label, _ = res.Versions.Lookup(root.Key.String())
	}
	return step, nil
}

// labelFromSnapshot strips marker from the root module's version.
func (f *Flow) labelFromSnapshot(r *project.Reactor, marker string) (string, error) {
	root, err := r.Root()
	if err != nil {
		return "", err
	}
	v := root.Version
	if len(v) <= len(marker) || !strings.EqualFold(v[len(v)-len(marker):], marker) {
		return "", fmt.Errorf("root version %q does not end in %q", v, marker)
	}
	return v[:len(v)-len(marker)], nil
}

// checkRelease fails when target leaves a reactor module at a snapshot.
func checkRelease(r *project.Reactor, target versionmap.Map) error {
	var snapshots []string
	for _, k := range r.Keys() {
		if v, ok := target.Lookup(k); ok && coord.IsSnapshotString(v) {
			snapshots = append(snapshots, k+"@"+v)
		}
	}
	if len(snapshots) > 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotInRelease, strings.Join(snapshots, ", "))
	}
	return nil
}

// reactorVersions restricts m to the reactor's modules.
func reactorVersions(r *project.Reactor, m versionmap.Map) map[string]string {
	out := make(map[string]string, r.Len())
	for _, k := range r.Keys() {
		if v, ok := m.Lookup(k); ok {
			out[k] = v
		}
	}
	return out
}
