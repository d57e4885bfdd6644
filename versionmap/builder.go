package versionmap

import (
	"math/rand/v2"
	"strconv"

	"github.com/albertocavalcante/go-relflow/project"
)

type cacheKey struct {
	key  string
	kind Kind
}

const originalKind Kind = -1

// Builder derives version maps for a reactor and caches them per cache key
// and kind. Reusing a cache key with a different reactor returns the cached
// map; use RandomKey to force a fresh computation.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	resolver   Resolver
	consistent bool
	cache      map[cacheKey]Map
}

// NewBuilder returns a Builder resolving versions through resolver. With
// consistent set, only the root module is resolved and its version is
// assigned to every module; the resulting maps are declared consistent.
func NewBuilder(resolver Resolver, consistent bool) *Builder {
	if resolver == nil {
		resolver = DefaultResolver{}
	}
	return &Builder{
		resolver:   resolver,
		consistent: consistent,
		cache:      make(map[cacheKey]Map),
	}
}

// Consistent reports whether the builder produces consistent maps.
func (b *Builder) Consistent() bool {
	return b.consistent
}

// Original returns the current version of every module. Original maps are
// never consistent: a module missing from them is external.
func (b *Builder) Original(key string, r *project.Reactor) Map {
	ck := cacheKey{key, originalKind}
	if m, ok := b.cache[ck]; ok {
		return m
	}
	m := New(r.Versions())
	b.cache[ck] = m
	return m
}

// Release returns the release version of every module.
func (b *Builder) Release(key string, r *project.Reactor) (Map, error) {
	return b.resolve(key, Release, r, nil)
}

// Development returns the next development version of every module.
func (b *Builder) Development(key string, r *project.Reactor) (Map, error) {
	return b.resolve(key, Development, r, nil)
}

// Hotfix returns the hotfix version of every module. lastRelease holds the
// last released version per module key and may be nil.
func (b *Builder) Hotfix(key string, r *project.Reactor, lastRelease map[string]string) (Map, error) {
	return b.resolve(key, Hotfix, r, lastRelease)
}

// Previous returns the versions recorded before a hotfix started. When none
// were recorded it falls back to the development versions and reports
// fallback as true.
func (b *Builder) Previous(key string, r *project.Reactor, preHotfix map[string]string) (m Map, fallback bool, err error) {
	if len(preHotfix) == 0 {
		m, err := b.Development(key, r)
		return m, true, err
	}
	return New(preHotfix).WithConsistent(b.consistent), false, nil
}

func (b *Builder) resolve(key string, kind Kind, r *project.Reactor, lastRelease map[string]string) (Map, error) {
	ck := cacheKey{key, kind}
	if m, ok := b.cache[ck]; ok {
		return m, nil
	}

	versions := make(map[string]string, r.Len())
	if b.consistent {
		root, err := r.Root()
		if err != nil {
			return Map{}, err
		}
		v, err := b.resolveOne(kind, root, r, lastRelease)
		if err != nil {
			return Map{}, err
		}
		for _, k := range r.Keys() {
			versions[k] = v
		}
	} else {
		for _, mod := range r.Modules() {
			v, err := b.resolveOne(kind, mod, r, lastRelease)
			if err != nil {
				return Map{}, err
			}
			versions[mod.Key.String()] = v
		}
	}

	m := Map{versions: versions, consistent: b.consistent}
	b.cache[ck] = m
	return m, nil
}

func (b *Builder) resolveOne(kind Kind, mod *project.Module, r *project.Reactor, lastRelease map[string]string) (string, error) {
	key := mod.Key.String()
	v, err := b.resolver.ResolveVersion(Request{
		Kind:        kind,
		Module:      mod,
		Reactor:     r,
		LastRelease: lastRelease[key],
	})
	if err != nil {
		return "", &ResolutionError{Kind: kind, Module: key, Err: err}
	}
	if v == "" {
		return "", &ResolutionError{Kind: kind, Module: key, Err: errEmptyVersion}
	}
	return v, nil
}

// RandomKey returns base followed by a random number, for cache keys that
// must not collide with earlier computations.
func RandomKey(rng *rand.Rand, base string) string {
	return base + strconv.FormatUint(rng.Uint64(), 10)
}
