package rewrite

import (
	"strings"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// DefaultPluginGroup is the group assumed for plugins declared without one.
const DefaultPluginGroup = "org.apache.maven.plugins"

// reference is one group/artifact/version triple inside a descriptor.
// defaultGroup applies when the declaration has no groupId; empty means the
// declaration is skipped.
type reference struct {
	node         doc.Node
	defaultGroup string
}

// DependencyVersion moves references to reactor modules from their original
// to their target versions. References whose key and version text do not
// match Original are left alone. With Update false the change does nothing.
//
// Group properties referring to the module or its parent are expanded before
// matching. Plugins without a groupId default to DefaultPluginGroup; other
// declarations without one are skipped.
type DependencyVersion struct {
	Original versionmap.Map
	Versions versionmap.Map
	Update   bool
}

func (DependencyVersion) change() {}

// Name implements Change.
func (DependencyVersion) Name() string { return "Update Dependency Versions" }

// Apply implements Change.
func (c DependencyVersion) Apply(m *project.Module, root doc.Node) (Result, error) {
	var res Result
	if !c.Update {
		return res, nil
	}
	ns := root.Namespace()

	refs := references(root, ns)
	for _, p := range doc.ChildrenNamed(doc.Path(root, ns, "profiles"), "profile", ns) {
		refs = append(refs, references(p, ns)...)
	}

	groups := groupReplacer(m)
	for _, ref := range refs {
		if err := c.update(ref, ns, groups, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c DependencyVersion) update(ref reference, ns string, groups *strings.Replacer, res *Result) error {
	artifact, ok := doc.ChildText(ref.node, "artifactId", ns)
	if !ok {
		return nil
	}
	group, ok := doc.ChildText(ref.node, "groupId", ns)
	if !ok {
		group = ref.defaultGroup
	}
	if group == "" {
		return nil
	}
	group = groups.Replace(strings.TrimSpace(group))
	version := ref.node.Child("version", ns)
	if version == nil {
		return nil
	}

	key, err := coord.NewKey(group, artifact)
	if err != nil {
		// Unresolved properties name no module of the reactor.
		return nil
	}
	original, ok := c.Original.Get(key.String())
	if !ok || version.Text() != original {
		return nil
	}
	target, err := lookup(c.Versions, key.String())
	if err != nil {
		return err
	}

	res.logf("updating %s %s version '%s' to '%s'", ref.node.Name(), key, original, target)
	version.SetText(target)
	res.Modified = true
	return nil
}

// groupReplacer expands the group properties a descriptor may use to refer
// to its own or its parent's group.
func groupReplacer(m *project.Module) *strings.Replacer {
	pairs := []string{
		"${project.groupId}", m.Key.Group(),
		"${pom.groupId}", m.Key.Group(),
		"${groupId}", m.Key.Group(),
	}
	if m.HasParent() {
		pairs = append(pairs,
			"${project.parent.groupId}", m.ParentKey.Group(),
			"${parent.groupId}", m.ParentKey.Group(),
		)
	}
	return strings.NewReplacer(pairs...)
}

// references collects the dependency, plugin and extension declarations
// directly below base, which is the project root or a profile. Only plugins
// have a default group.
func references(base doc.Node, ns string) []reference {
	var refs []reference
	add := func(nodes []doc.Node, defaultGroup string) {
		for _, n := range nodes {
			refs = append(refs, reference{node: n, defaultGroup: defaultGroup})
		}
	}
	dependencies := func(parent doc.Node) {
		add(doc.ChildrenNamed(doc.Path(parent, ns, "dependencies"), "dependency", ns), "")
	}
	plugins := func(container doc.Node) {
		for _, p := range doc.ChildrenNamed(container, "plugin", ns) {
			add([]doc.Node{p}, DefaultPluginGroup)
			dependencies(p)
		}
	}

	dependencies(base)
	dependencies(doc.Path(base, ns, "dependencyManagement"))

	build := doc.Path(base, ns, "build")
	plugins(doc.Path(build, ns, "plugins"))
	plugins(doc.Path(build, ns, "pluginManagement", "plugins"))
	add(doc.ChildrenNamed(doc.Path(build, ns, "extensions"), "extension", ns), "")

	plugins(doc.Path(base, ns, "reporting", "plugins"))
	return refs
}
