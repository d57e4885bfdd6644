// Package doc defines the tree capability the rewrite engine needs from a
// module descriptor: named, optionally namespaced children, text access and
// positional insertion.
//
// Two backends are provided:
//
//   - [github.com/albertocavalcante/go-relflow/doc/xmldoc]: POM-style XML documents
//   - [github.com/albertocavalcante/go-relflow/doc/bzldoc]: MODULE.bazel files
//
// Node identity is only meaningful within one rewrite pass; callers must not
// hold on to nodes across passes.
package doc

import (
	"errors"
	"io"
)

// ErrUnsupported is returned when a backend cannot perform a mutation on a
// particular node (for example inserting into a synthesized container).
var ErrUnsupported = errors.New("operation not supported by document backend")

// Node is one element of a descriptor tree.
type Node interface {
	// Name returns the local name of the node.
	Name() string

	// Namespace returns the namespace URI of the node, or "" if none.
	Namespace() string

	// Text returns the trimmed text content.
	Text() string

	// SetText replaces the text content.
	SetText(text string)

	// Children returns the child nodes in document order.
	Children() []Node

	// Child returns the first child with the given name and namespace, or nil.
	Child(name, namespace string) Node

	// IndexOf returns the position of child within Children, or -1.
	IndexOf(child Node) int

	// InsertChildAt creates a child named name at position index of Children.
	// An index equal to len(Children()) appends.
	InsertChildAt(index int, name string) (Node, error)
}

// Document is a parsed descriptor.
type Document interface {
	// Root returns the root node.
	Root() Node

	// DefaultNamespace returns the namespace all child lookups must use,
	// or "" for unnamespaced documents.
	DefaultNamespace() string

	// WriteTo serializes the document.
	WriteTo(w io.Writer) (int64, error)
}

// Path walks down from n following names, returning nil as soon as a step is
// missing.
func Path(n Node, namespace string, names ...string) Node {
	cur := n
	for _, name := range names {
		if cur == nil {
			return nil
		}
		cur = cur.Child(name, namespace)
	}
	return cur
}

// ChildText returns the text of the named child, and whether it exists.
func ChildText(n Node, name, namespace string) (string, bool) {
	c := n.Child(name, namespace)
	if c == nil {
		return "", false
	}
	return c.Text(), true
}

// ChildrenNamed returns all children of n with the given name and namespace.
func ChildrenNamed(n Node, name, namespace string) []Node {
	if n == nil {
		return nil
	}
	var out []Node
	for _, c := range n.Children() {
		if c.Name() == name && c.Namespace() == namespace {
			out = append(out, c)
		}
	}
	return out
}
