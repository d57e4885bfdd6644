package versionmap

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/project"
)

// Kind selects which target version a resolver computes.
type Kind int

const (
	// Release is the version a release branch finishes with.
	Release Kind = iota
	// Development is the next snapshot on the development line.
	Development
	// Hotfix is the version a hotfix branch finishes with.
	Hotfix
)

func (k Kind) String() string {
	switch k {
	case Release:
		return "release"
	case Development:
		return "development"
	case Hotfix:
		return "hotfix"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrSnapshotRelease indicates a release version that still is a snapshot.
var ErrSnapshotRelease = errors.New("release version is a snapshot")

var errEmptyVersion = errors.New("resolver returned an empty version")

// ResolutionError reports that the target version of a module could not be
// determined.
type ResolutionError struct {
	Kind   Kind
	Module string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s version for %s: %v", e.Kind, e.Module, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Request is the input to a single resolution.
type Request struct {
	Kind    Kind
	Module  *project.Module
	Reactor *project.Reactor

	// LastRelease is the last released version recorded for the module,
	// empty when unknown. Only hotfix resolution consults it.
	LastRelease string
}

// Resolver decides the target version of one module.
type Resolver interface {
	ResolveVersion(req Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(req Request) (string, error)

// ResolveVersion calls f(req).
func (f ResolverFunc) ResolveVersion(req Request) (string, error) {
	return f(req)
}

// DefaultResolver computes versions from the module's current version.
// A non-empty default version wins over the computed one.
type DefaultResolver struct {
	DefaultReleaseVersion     string
	DefaultDevelopmentVersion string
	DefaultHotfixVersion      string

	// AllowSnapshots permits release and hotfix versions that are still
	// snapshots, such as timestamped snapshot builds.
	AllowSnapshots bool
}

// ResolveVersion implements Resolver.
func (d DefaultResolver) ResolveVersion(req Request) (string, error) {
	switch req.Kind {
	case Release:
		if d.DefaultReleaseVersion != "" {
			return d.DefaultReleaseVersion, nil
		}
		v, err := d.release(req.Module.Version)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	case Development:
		if d.DefaultDevelopmentVersion != "" {
			return d.DefaultDevelopmentVersion, nil
		}
		v, err := coord.NewVersion(req.Module.Version)
		if err != nil {
			return "", err
		}
		next, err := v.NextDevelopment()
		if err != nil {
			return "", err
		}
		return next.String(), nil
	case Hotfix:
		if d.DefaultHotfixVersion != "" {
			return d.DefaultHotfixVersion, nil
		}
		base, err := d.release(req.Module.Version)
		if err != nil {
			return "", err
		}
		if req.LastRelease != "" {
			last, err := coord.NewVersion(req.LastRelease)
			if err == nil && base.Less(last) {
				base = last
			}
		}
		next, err := base.NextHotfix()
		if err != nil {
			return "", err
		}
		return next.String(), nil
	default:
		return "", fmt.Errorf("unknown kind %s", req.Kind)
	}
}

func (d DefaultResolver) release(current string) (coord.Version, error) {
	v, err := coord.NewVersion(current)
	if err != nil {
		return coord.Version{}, err
	}
	r := v.Release()
	if r.IsSnapshot() && !d.AllowSnapshots {
		return coord.Version{}, fmt.Errorf("%w: %s", ErrSnapshotRelease, r)
	}
	return r, nil
}
