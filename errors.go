package relflow

import "errors"

// Sentinel errors for failed reactor checks.
var (
	// ErrNoSnapshot indicates that no module of the reactor has a snapshot
	// version, so there is nothing to release.
	ErrNoSnapshot = errors.New("no module has a SNAPSHOT version")

	// ErrSnapshotInRelease indicates that a module still has a snapshot
	// version where only release versions are allowed.
	ErrSnapshotInRelease = errors.New("modules contain SNAPSHOT versions")

	// ErrNoLabel indicates that the root module has no target version.
	ErrNoLabel = errors.New("root module has no target version")
)
