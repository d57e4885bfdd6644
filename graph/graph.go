// Package graph describes a reactor as a module tree annotated with version
// transitions, for previewing what a workflow step will do.
//
// Modules are arranged by their parent reference. A module whose parent is
// not part of the reactor is a root of the tree.
//
// # Building a Graph
//
//	g := graph.Build(reactor)          // captures the current versions
//	res, _ := flow.UpdateWithReleaseVersion("plan", reactor)
//	g.SetTargets(res.Versions)
//
// # Output Formats
//
//	text := g.ToText("Release plan")
//	dot := g.ToDOT()
//	data, _ := g.ToJSON()
package graph

import (
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// Graph is a reactor module tree.
type Graph struct {
	// Roots are the keys of modules without an in-reactor parent, in
	// reactor order.
	Roots []string

	// Nodes contains every module, keyed by module key.
	Nodes map[string]*Node

	order []string
}

// Node is one module of the graph.
type Node struct {
	Key  string
	Name string

	// Current is the version the module had when the graph was built.
	Current string

	// Target is the version after the step, empty until SetTargets.
	Target string

	// Parent is the key of the in-reactor parent, empty for roots.
	Parent string

	// Children are the keys of modules declaring this one as parent.
	Children []string
}

// Changed reports whether the node moves to a different version.
func (n *Node) Changed() bool {
	return n.Target != "" && n.Target != n.Current
}

// Build captures the modules and current versions of r.
func Build(r *project.Reactor) *Graph {
	g := &Graph{Nodes: make(map[string]*Node, r.Len())}
	for _, m := range r.Modules() {
		key := m.Key.String()
		g.Nodes[key] = &Node{Key: key, Name: m.DisplayName(), Current: m.Version}
		g.order = append(g.order, key)
	}
	for _, m := range r.Modules() {
		key := m.Key.String()
		parent := m.ParentKey.String()
		if p, ok := g.Nodes[parent]; ok && m.HasParent() && parent != key {
			g.Nodes[key].Parent = parent
			p.Children = append(p.Children, key)
			continue
		}
		g.Roots = append(g.Roots, key)
	}
	return g
}

// SetTargets records the target version of every module found in targets.
func (g *Graph) SetTargets(targets versionmap.Map) {
	for _, n := range g.Nodes {
		if v, ok := targets.Lookup(n.Key); ok {
			n.Target = v
		}
	}
}

// Keys returns the module keys in reactor order.
func (g *Graph) Keys() []string {
	return append([]string(nil), g.order...)
}

// Changed returns the keys of modules changing version, in reactor order.
func (g *Graph) Changed() []string {
	var out []string
	for _, k := range g.order {
		if g.Nodes[k].Changed() {
			out = append(out, k)
		}
	}
	return out
}

// Ancestors returns the parent chain of key, nearest first.
func (g *Graph) Ancestors(key string) []string {
	var out []string
	seen := map[string]bool{key: true}
	for n := g.Nodes[key]; n != nil && n.Parent != ""; n = g.Nodes[n.Parent] {
		if seen[n.Parent] {
			break
		}
		seen[n.Parent] = true
		out = append(out, n.Parent)
	}
	return out
}
