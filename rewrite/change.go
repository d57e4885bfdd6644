// Package rewrite applies version changes to module descriptor documents.
//
// A [Change] is one kind of edit (own version, parent reference, dependency
// references, SCM tag). Changes are stateless: applying one returns a
// [Result] holding the modified flag and the work log of that application,
// so the same Change value serves every module of a reactor.
//
// A [Changeset] orders changes for one pass and a [Rewriter] applies it.
// The first failing change aborts the pass for that module; changes already
// applied to its document are not rolled back, so callers must not persist a
// document whose pass failed.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// Result is the outcome of applying one Change to one module.
type Result struct {
	Modified bool
	Log      []string
}

func (r *Result) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Change is a single document edit. The set of implementations is fixed:
// SelfVersion, ParentVersion, DependencyVersion, ScmTag and ScmHeadTag.
type Change interface {
	// Name is the human readable change name used in work logs.
	Name() string

	// Apply edits root, the descriptor document of m, in place.
	Apply(m *project.Module, root doc.Node) (Result, error)

	change()
}

// Describe formats the work log of one change application:
// "[name]" when log is empty, otherwise "[name]\n - e1\n - e2".
func Describe(name string, log []string) string {
	if len(log) == 0 {
		return "[" + name + "]"
	}
	return "[" + name + "]\n - " + strings.Join(log, "\n - ")
}

// lookup resolves key in versions, honouring the map's consistency flag.
func lookup(versions versionmap.Map, key string) (string, error) {
	if v, ok := versions.Lookup(key); ok {
		return v, nil
	}
	return "", &MissingVersionError{Module: key}
}
