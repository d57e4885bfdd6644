// Package relflow moves the versions of a multi-module project through a
// branch based release workflow: release start and finish, hotfix start and
// finish, development and restore of pre-hotfix versions.
//
// # Overview
//
// The package builds on four components:
//
//   - project: loads the modules of a reactor (pom.xml or MODULE.bazel)
//   - versionmap: computes the target version of every module per step
//   - rewrite: applies version changes to the descriptor documents
//   - state: persists last release and pre-hotfix versions between steps
//
// A [Flow] ties them together. Each Update method computes one target map
// and rewrites every module with the changeset parent version, own version,
// dependency versions, SCM tag. The workflow steps ([Flow.ReleaseStart],
// [Flow.ReleaseFinish], [Flow.HotfixStart], [Flow.HotfixFinish],
// [Flow.Develop], [Flow.Restore]) combine checks, labels and updates the way
// a release branch is usually driven.
//
// # Quick Start
//
//	flow, reactor, err := relflow.Open(".", relflow.WithSuffix("release"))
//	if err != nil {
//	    return err
//	}
//	step, err := flow.ReleaseStart(reactor)
//	// step.Label is "1.0" for a root module at 1.0-SNAPSHOT; every module
//	// descriptor now carries 1.0-release-SNAPSHOT.
//
// # Persistence
//
// Modified descriptors are saved after each module by default, so a failure
// leaves earlier modules rewritten. [WithStaging] saves only after every
// module succeeded; [WithDryRun] never saves. Branch switching and project
// reloading are left to the caller.
//
// # Thread Safety
//
// A Flow caches version maps and is not safe for concurrent use.
package relflow

import (
	"fmt"

	"github.com/albertocavalcante/go-relflow/project"
)

// Open loads the project at path and creates a Flow for it.
func Open(path string, opts ...Option) (*Flow, *project.Reactor, error) {
	r, err := project.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}
	f, err := New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return f, r, nil
}
