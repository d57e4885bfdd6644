package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const separatorWidth = 60 // Width of separator lines in text output

// JSONNode is the JSON form of a module and its subtree.
type JSONNode struct {
	Key      string     `json:"key"`
	Name     string     `json:"name,omitempty"`
	Current  string     `json:"current"`
	Target   string     `json:"target,omitempty"`
	Changed  bool       `json:"changed,omitempty"`
	Children []JSONNode `json:"children,omitempty"`
}

// ToJSON outputs the module trees as indented JSON.
func (g *Graph) ToJSON() ([]byte, error) {
	roots := make([]JSONNode, 0, len(g.Roots))
	for _, r := range g.Roots {
		roots = append(roots, g.jsonNode(r, map[string]bool{}))
	}
	return json.MarshalIndent(roots, "", "  ")
}

func (g *Graph) jsonNode(key string, visited map[string]bool) JSONNode {
	n := g.Nodes[key]
	out := JSONNode{Key: n.Key, Name: n.Name, Current: n.Current, Target: n.Target, Changed: n.Changed()}
	if visited[key] {
		return out
	}
	visited[key] = true
	for _, c := range n.Children {
		out.Children = append(out.Children, g.jsonNode(c, visited))
	}
	return out
}

// ToDOT outputs the parent relations in Graphviz DOT format. Changing
// modules are labelled with their transition.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph reactor {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box];\n\n")

	for _, k := range g.order {
		n := g.Nodes[k]
		fmt.Fprintf(&buf, "  %q [label=%q];\n", k, k+"\n"+transition(n))
	}
	buf.WriteString("\n")
	for _, k := range g.order {
		if p := g.Nodes[k].Parent; p != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p, k)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText outputs a human-readable tree of version transitions.
func (g *Graph) ToText(title string) string {
	var buf bytes.Buffer

	root := ""
	if len(g.Roots) > 0 {
		root = g.Roots[0]
	}
	fmt.Fprintf(&buf, "%s (root: %s)\n", title, root)
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")
	fmt.Fprintf(&buf, "Modules: %d\n", len(g.order))
	fmt.Fprintf(&buf, "Changing: %d\n\n", len(g.Changed()))

	visited := make(map[string]bool)
	for i, r := range g.Roots {
		g.printTree(&buf, r, "", i == len(g.Roots)-1, true, visited)
	}
	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, key, prefix string, isLast, top bool, visited map[string]bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if top {
		buf.WriteString(key)
	} else {
		buf.WriteString(prefix + connector + key)
	}

	n := g.Nodes[key]
	buf.WriteString(" " + transition(n))
	if visited[key] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")
	visited[key] = true

	for i, c := range n.Children {
		childPrefix := prefix
		if !top {
			if isLast {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		}
		g.printTree(buf, c, childPrefix, i == len(n.Children)-1, false, visited)
	}
}

func transition(n *Node) string {
	switch {
	case n.Target == "":
		return n.Current + " -> ?"
	case n.Changed():
		return n.Current + " -> " + n.Target
	default:
		return n.Current + " (unchanged)"
	}
}
