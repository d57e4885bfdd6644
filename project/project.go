// Package project models the modules taking part in one release operation
// (the reactor) and loads them from disk.
//
// Discovery follows the descriptor format:
//
//   - POM reactors: the root pom.xml and everything reachable through
//     <modules>, with groupId and version inherited from <parent>.
//   - Bazel reactors: every MODULE.bazel below the root directory.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/doc"
)

// ErrNoRoot indicates that no module of a reactor is free of an in-reactor parent.
var ErrNoRoot = errors.New("reactor has no root module")

// descriptorPermissions is the file mode used when persisting descriptors.
const descriptorPermissions = 0o644

// Module is one unit of the project graph with its descriptor document.
type Module struct {
	// Key is the versionless module identity.
	Key coord.Key

	// Name is a human readable name used in diagnostics.
	Name string

	// Version is the module's effective current version.
	Version string

	// ParentKey references the parent module, zero when there is none.
	// The parent does not need to be part of the reactor.
	ParentKey coord.Key

	// ParentVersion is the version the parent reference currently points at.
	ParentVersion string

	// Path is the descriptor file, empty for in-memory modules.
	Path string

	// Doc is the descriptor document owned by this module.
	Doc doc.Document
}

// HasParent reports whether the module declares a parent.
func (m *Module) HasParent() bool {
	return !m.ParentKey.IsEmpty()
}

// DisplayName returns Name, falling back to the artifact.
func (m *Module) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Key.Artifact()
}

// Bytes serializes the current document.
func (m *Module) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.Doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", m.Key, err)
	}
	return buf.Bytes(), nil
}

// Save writes the document back to Path.
func (m *Module) Save() error {
	if m.Path == "" {
		return fmt.Errorf("save %s: module has no path", m.Key)
	}
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.Path, data, descriptorPermissions); err != nil {
		return fmt.Errorf("save %s: %w", m.Key, err)
	}
	return nil
}

// Reactor is the ordered set of modules participating in one operation.
type Reactor struct {
	modules []*Module
	byKey   map[string]*Module
}

// NewReactor builds a reactor, rejecting duplicate keys.
func NewReactor(modules ...*Module) (*Reactor, error) {
	r := &Reactor{byKey: make(map[string]*Module, len(modules))}
	for _, m := range modules {
		k := m.Key.String()
		if k == "" {
			return nil, fmt.Errorf("module at %q has an empty key", m.Path)
		}
		if _, dup := r.byKey[k]; dup {
			return nil, fmt.Errorf("duplicate module %s in reactor", k)
		}
		r.byKey[k] = m
		r.modules = append(r.modules, m)
	}
	return r, nil
}

// Modules returns the modules in reactor order.
func (r *Reactor) Modules() []*Module {
	return r.modules
}

// Len returns the number of modules.
func (r *Reactor) Len() int {
	return len(r.modules)
}

// Lookup finds a module by its normalized key.
func (r *Reactor) Lookup(key string) (*Module, bool) {
	m, ok := r.byKey[key]
	return m, ok
}

// Keys returns the module keys in reactor order.
func (r *Reactor) Keys() []string {
	keys := make([]string, len(r.modules))
	for i, m := range r.modules {
		keys[i] = m.Key.String()
	}
	return keys
}

// Root returns the first module whose parent is not part of the reactor.
func (r *Reactor) Root() (*Module, error) {
	for _, m := range r.modules {
		if !m.HasParent() {
			return m, nil
		}
		if _, ok := r.byKey[m.ParentKey.String()]; !ok {
			return m, nil
		}
	}
	return nil, ErrNoRoot
}

// Versions returns the current version of every module, keyed by module key.
func (r *Reactor) Versions() map[string]string {
	out := make(map[string]string, len(r.modules))
	for _, m := range r.modules {
		out[m.Key.String()] = m.Version
	}
	return out
}
