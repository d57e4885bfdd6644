package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/doc/bzldoc"
	"github.com/albertocavalcante/go-relflow/doc/xmldoc"
)

// POMFileName is the conventional XML descriptor file name.
const POMFileName = "pom.xml"

// Load detects the descriptor format at path and loads the reactor.
// path may be a directory, a pom.xml (or other XML descriptor) or a
// MODULE.bazel file.
func Load(path string) (*Reactor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if !info.IsDir() {
		if filepath.Base(path) == bzldoc.FileName {
			return LoadBazel(filepath.Dir(path))
		}
		return LoadPOM(path)
	}

	if fileExists(filepath.Join(path, POMFileName)) {
		return LoadPOM(filepath.Join(path, POMFileName))
	}
	if fileExists(filepath.Join(path, bzldoc.FileName)) {
		return LoadBazel(path)
	}
	return nil, fmt.Errorf("load project: no %s or %s in %s", POMFileName, bzldoc.FileName, path)
}

// LoadPOM loads the POM at path and every module reachable through <modules>.
// Modules are returned in discovery order, the root first.
func LoadPOM(path string) (*Reactor, error) {
	var modules []*Module
	visited := make(map[string]bool)

	var walk func(string) error
	walk = func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if visited[abs] {
			return nil
		}
		visited[abs] = true

		d, err := xmldoc.ParseFile(abs)
		if err != nil {
			return err
		}
		m, children, err := pomModule(abs, d)
		if err != nil {
			return err
		}
		modules = append(modules, m)

		for _, child := range children {
			next := filepath.Join(filepath.Dir(abs), filepath.FromSlash(child))
			if info, err := os.Stat(next); err == nil && info.IsDir() {
				next = filepath.Join(next, POMFileName)
			}
			if err := walk(next); err != nil {
				return fmt.Errorf("module %q of %s: %w", child, abs, err)
			}
		}
		return nil
	}

	if err := walk(path); err != nil {
		return nil, err
	}
	return NewReactor(modules...)
}

func pomModule(path string, d *xmldoc.Document) (*Module, []string, error) {
	ns := d.DefaultNamespace()
	root := d.Root()
	parent := root.Child("parent", ns)

	group := text(root, "groupId", ns)
	version := text(root, "version", ns)
	if parent != nil {
		if group == "" {
			group = text(parent, "groupId", ns)
		}
		if version == "" {
			version = text(parent, "version", ns)
		}
	}

	key, err := coord.NewKey(group, text(root, "artifactId", ns))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	m := &Module{
		Key:     key,
		Name:    text(root, "name", ns),
		Version: version,
		Path:    path,
		Doc:     d,
	}
	if parent != nil {
		pk, err := coord.NewKey(text(parent, "groupId", ns), text(parent, "artifactId", ns))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: parent: %w", path, err)
		}
		m.ParentKey = pk
		m.ParentVersion = text(parent, "version", ns)
	}

	var children []string
	for _, n := range doc.ChildrenNamed(root.Child("modules", ns), "module", ns) {
		if t := n.Text(); t != "" {
			children = append(children, t)
		}
	}
	return m, children, nil
}

// LoadBazel loads dir/MODULE.bazel as root and every MODULE.bazel found
// below dir. Hidden directories and bazel-* output trees are skipped.
func LoadBazel(dir string) (*Reactor, error) {
	rootFile := filepath.Join(dir, bzldoc.FileName)
	root, err := bazelModule(rootFile)
	if err != nil {
		return nil, err
	}
	modules := []*Module{root}

	err = filepath.WalkDir(dir, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			name := e.Name()
			if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "bazel-")) {
				return filepath.SkipDir
			}
			return nil
		}
		if e.Name() != bzldoc.FileName || p == rootFile {
			return nil
		}
		m, err := bazelModule(p)
		if err != nil {
			return err
		}
		modules = append(modules, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewReactor(modules...)
}

func bazelModule(path string) (*Module, error) {
	d, err := bzldoc.ParseFile(path)
	if err != nil {
		return nil, err
	}
	name := d.ModuleName()
	if name == "" {
		return nil, fmt.Errorf("%s: module() declares no name", path)
	}
	key, err := coord.NewKey(bzldoc.Group, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Module{
		Key:     key,
		Name:    name,
		Version: d.ModuleVersion(),
		Path:    path,
		Doc:     d,
	}, nil
}

func text(n doc.Node, name, ns string) string {
	t, _ := doc.ChildText(n, name, ns)
	return t
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
