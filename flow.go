package relflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/rewrite"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// Flow computes version maps for workflow steps and rewrites module
// descriptors accordingly. It does not switch branches or reload projects:
// every method works on the reactor it is given.
//
// A Flow is not safe for concurrent use.
type Flow struct {
	cfg      *flowConfig
	builder  *versionmap.Builder
	rewriter *rewrite.Rewriter
}

// Result is the outcome of one descriptor update pass.
type Result struct {
	// Versions is the target version map of the pass.
	Versions versionmap.Map

	// Reports holds one report per rewritten module, in order.
	Reports []rewrite.Report

	// Saved lists the keys of modules whose descriptors were written.
	Saved []string
}

// Modified reports whether any module document was modified.
func (r *Result) Modified() bool {
	for _, rep := range r.Reports {
		if rep.Modified {
			return true
		}
	}
	return false
}

// New creates a Flow.
func New(opts ...Option) (*Flow, error) {
	cfg, err := newFlowConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Flow{
		cfg:      cfg,
		builder:  versionmap.NewBuilder(cfg.resolver, cfg.consistent),
		rewriter: rewrite.NewRewriter(cfg.log()),
	}, nil
}

// ReleaseLabel returns the release version of the root module.
func (f *Flow) ReleaseLabel(key string, r *project.Reactor) (string, error) {
	m, err := f.builder.Release(key, r)
	if err != nil {
		return "", err
	}
	return rootVersion(r, m)
}

// HotfixLabel returns the hotfix version of the root module.
func (f *Flow) HotfixLabel(key string, r *project.Reactor, lastRelease map[string]string) (string, error) {
	m, err := f.builder.Hotfix(key, r, lastRelease)
	if err != nil {
		return "", err
	}
	return rootVersion(r, m)
}

// DevelopmentLabel returns the next development version of the root module.
func (f *Flow) DevelopmentLabel(key string, r *project.Reactor) (string, error) {
	m, err := f.builder.Development(key, r)
	if err != nil {
		return "", err
	}
	return rootVersion(r, m)
}

func rootVersion(r *project.Reactor, m versionmap.Map) (string, error) {
	root, err := r.Root()
	if err != nil {
		return "", err
	}
	v, ok := m.Get(root.Key.String())
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoLabel, root.Key)
	}
	return v, nil
}

// UpdateWithReleaseVersion sets every module to its release version.
func (f *Flow) UpdateWithReleaseVersion(key string, r *project.Reactor) (*Result, error) {
	original := f.builder.Original(key, r)
	release, err := f.builder.Release(key, r)
	if err != nil {
		return nil, err
	}
	return f.update(r.Modules(), original, release, false)
}

// UpdateFromReleaseSnapshot turns release branch snapshots of label back into
// the release version: label-suffix-SNAPSHOT becomes label.
func (f *Flow) UpdateFromReleaseSnapshot(key, label string, r *project.Reactor) (*Result, error) {
	original := f.builder.Original(key, r)
	release := versionmap.ReleaseFromSnapshot(original, label, f.cfg.suffix).
		WithConsistent(f.builder.Consistent())
	return f.update(r.Modules(), original, release, false)
}

// UpdateWithReleaseSnapshot sets modules released as label to the release
// branch snapshot label-suffix-SNAPSHOT. The SCM tag is reset to HEAD.
func (f *Flow) UpdateWithReleaseSnapshot(key, label string, r *project.Reactor) (*Result, error) {
	original := f.builder.Original(key, r)
	release, err := f.builder.Release(key, r)
	if err != nil {
		return nil, err
	}
	return f.update(r.Modules(), original, versionmap.ReleaseSnapshot(release, label, f.cfg.suffix), true)
}

// UpdateWithVersionCopy sets the modules of target to the versions the same
// modules have in source.
func (f *Flow) UpdateWithVersionCopy(target, source *project.Reactor) (*Result, error) {
	original := f.builder.Original(versionmap.RandomKey(f.cfg.rng, "copy"), target)
	versions := f.builder.Original(versionmap.RandomKey(f.cfg.rng, "copy"), source).
		WithConsistent(f.builder.Consistent())
	return f.update(target.Modules(), original, versions, false)
}

// UpdateWithPreviousVersions restores the versions recorded before a hotfix
// started. Without recorded versions the modules get their next development
// versions instead.
func (f *Flow) UpdateWithPreviousVersions(key string, r *project.Reactor, preHotfix map[string]string) (*Result, error) {
	original := f.builder.Original(key, r)
	previous, fallback, err := f.builder.Previous(key, r, preHotfix)
	if err != nil {
		return nil, err
	}
	if fallback {
		f.cfg.log().Warn("no pre-hotfix versions recorded, using development versions")
	}
	// The development fallback keeps the HEAD tag of a development pass.
	return f.update(r.Modules(), original, previous, fallback)
}

// UpdateWithHotfixVersion sets every module to its hotfix version.
func (f *Flow) UpdateWithHotfixVersion(key string, r *project.Reactor, lastRelease map[string]string) (*Result, error) {
	original := f.builder.Original(key, r)
	hotfix, err := f.builder.Hotfix(key, r, lastRelease)
	if err != nil {
		return nil, err
	}
	return f.update(r.Modules(), original, hotfix, false)
}

// UpdateFromHotfixSnapshot turns hotfix branch snapshots of label back into
// the hotfix version: label-SNAPSHOT becomes label.
func (f *Flow) UpdateFromHotfixSnapshot(key, label string, r *project.Reactor) (*Result, error) {
	original := f.builder.Original(key, r)
	hotfix := versionmap.HotfixFromSnapshot(original, label).WithConsistent(f.builder.Consistent())
	return f.update(r.Modules(), original, hotfix, false)
}

// UpdateWithHotfixSnapshot sets modules at hotfix version label to
// label-SNAPSHOT. The SCM tag is reset to HEAD.
func (f *Flow) UpdateWithHotfixSnapshot(key, label string, r *project.Reactor, lastRelease map[string]string) (*Result, error) {
	original := f.builder.Original(key, r)
	hotfix, err := f.builder.Hotfix(key, r, lastRelease)
	if err != nil {
		return nil, err
	}
	return f.update(r.Modules(), original, versionmap.HotfixSnapshot(hotfix, label), true)
}

// UpdateWithDevelopmentVersion sets every module to its next development
// version. The SCM tag is reset to HEAD.
func (f *Flow) UpdateWithDevelopmentVersion(key string, r *project.Reactor) (*Result, error) {
	original := f.builder.Original(key, r)
	development, err := f.builder.Development(key, r)
	if err != nil {
		return nil, err
	}
	return f.update(r.Modules(), original, development, true)
}

// CheckForSnapshot fails with ErrNoSnapshot unless a module has a snapshot
// version.
func (f *Flow) CheckForSnapshot(r *project.Reactor) error {
	f.cfg.log().Info("checking for SNAPSHOT version in modules...")
	for _, m := range r.Modules() {
		if coord.IsSnapshotString(m.Version) {
			return nil
		}
	}
	return ErrNoSnapshot
}

// CheckForRelease fails with ErrSnapshotInRelease when a module has a
// snapshot version.
func (f *Flow) CheckForRelease(r *project.Reactor) error {
	f.cfg.log().Info("checking for release version in modules...")
	var snapshots []string
	for _, m := range r.Modules() {
		if coord.IsSnapshotString(m.Version) {
			snapshots = append(snapshots, m.Key.String()+"@"+m.Version)
		}
	}
	if len(snapshots) > 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotInRelease, strings.Join(snapshots, ", "))
	}
	return nil
}

func (f *Flow) changeset(original, target versionmap.Map, head bool) *rewrite.Changeset {
	cs := rewrite.NewChangeset(
		rewrite.ParentVersion{Original: original, Versions: target},
		rewrite.SelfVersion{Versions: target},
		rewrite.DependencyVersion{Original: original, Versions: target, Update: f.cfg.updateDependencies},
	)
	if head {
		return cs.With(rewrite.ScmHeadTag{Versions: target})
	}
	return cs.With(rewrite.ScmTag{Versions: target, Format: f.cfg.tagFormat})
}

// update rewrites modules from original to target versions and persists the
// modified descriptors.
func (f *Flow) update(modules []*project.Module, original, target versionmap.Map, head bool) (*Result, error) {
	log := f.cfg.log()
	log.Info("updating descriptors for all modules...")
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		log.Info("enable debug logging to see exact changes")
	}

	cs := f.changeset(original, target, head)
	res := &Result{Versions: target}
	var pending []*project.Module

	for _, m := range modules {
		log.Info("updating descriptor for " + m.DisplayName() + "...")
		rep, err := f.rewriter.Apply(m, cs)
		if err != nil {
			return res, fmt.Errorf("failed to update descriptors: %w", err)
		}
		res.Reports = append(res.Reports, rep)
		refresh(m, original, target)

		if !rep.Modified || m.Path == "" || f.cfg.dryRun {
			continue
		}
		if f.cfg.staging {
			pending = append(pending, m)
			continue
		}
		if err := f.save(m, res); err != nil {
			return res, err
		}
	}

	for _, m := range pending {
		if err := f.save(m, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (f *Flow) save(m *project.Module, res *Result) error {
	if err := m.Save(); err != nil {
		return fmt.Errorf("failed to save descriptor of %s: %w", m.Key, err)
	}
	res.Saved = append(res.Saved, m.Key.String())
	f.cfg.log().Debug("saved descriptor", "module", m.Key.String(), "path", m.Path)
	return nil
}

// refresh brings the in-memory module attributes in line with its rewritten
// document.
func refresh(m *project.Module, original, target versionmap.Map) {
	if v, ok := target.Lookup(m.Key.String()); ok {
		m.Version = v
	}
	if !m.HasParent() {
		return
	}
	parent := m.ParentKey.String()
	if orig, ok := original.Lookup(parent); ok && orig == m.ParentVersion {
		if v, ok := target.Lookup(parent); ok {
			m.ParentVersion = v
		}
	}
}
