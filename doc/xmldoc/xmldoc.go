// Package xmldoc implements the doc capability for POM-style XML descriptors
// on top of github.com/beevik/etree.
//
// Whitespace and comments are preserved so that a rewritten descriptor keeps
// the author's formatting. Inserted elements reuse the indentation of their
// preceding sibling.
package xmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/beevik/etree"
)

// Document is a parsed XML descriptor.
type Document struct {
	doc *etree.Document
}

var _ doc.Document = (*Document)(nil)

// ParseFile reads and parses an XML descriptor from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse parses XML descriptor content.
func Parse(data []byte) (*Document, error) {
	d := etree.NewDocument()
	if err := d.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	if d.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return &Document{doc: d}, nil
}

// Root returns the root element.
func (d *Document) Root() doc.Node {
	return &element{el: d.doc.Root()}
}

// DefaultNamespace returns the namespace URI of the root element.
func (d *Document) DefaultNamespace() string {
	return d.doc.Root().NamespaceURI()
}

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.doc.WriteTo(w)
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.doc.WriteToBytes()
}

type element struct {
	el *etree.Element
}

func (e *element) Name() string      { return e.el.Tag }
func (e *element) Namespace() string { return e.el.NamespaceURI() }
func (e *element) Text() string      { return strings.TrimSpace(e.el.Text()) }
func (e *element) SetText(s string)  { e.el.SetText(s) }

func (e *element) Children() []doc.Node {
	kids := e.el.ChildElements()
	out := make([]doc.Node, len(kids))
	for i, k := range kids {
		out[i] = &element{el: k}
	}
	return out
}

func (e *element) Child(name, namespace string) doc.Node {
	for _, k := range e.el.ChildElements() {
		if k.Tag == name && k.NamespaceURI() == namespace {
			return &element{el: k}
		}
	}
	return nil
}

func (e *element) IndexOf(child doc.Node) int {
	c, ok := child.(*element)
	if !ok {
		return -1
	}
	for i, k := range e.el.ChildElements() {
		if k == c.el {
			return i
		}
	}
	return -1
}

func (e *element) InsertChildAt(index int, name string) (doc.Node, error) {
	kids := e.el.ChildElements()
	if index < 0 || index > len(kids) {
		return nil, fmt.Errorf("insert %q at %d: index out of range [0,%d]", name, index, len(kids))
	}

	child := etree.NewElement(name)
	child.Space = e.el.Space

	switch {
	case index > 0:
		prev := kids[index-1]
		at := prev.Index() + 1
		if indent := leadingSpace(prev); indent != "" {
			e.el.InsertChildAt(at, etree.NewText(indent))
			at++
		}
		e.el.InsertChildAt(at, child)
	case len(kids) > 0:
		first := kids[0]
		at := first.Index()
		indent := leadingSpace(first)
		e.el.InsertChildAt(at, child)
		if indent != "" {
			e.el.InsertChildAt(at+1, etree.NewText(indent))
		}
	default:
		e.el.AddChild(child)
	}
	return &element{el: child}, nil
}

// leadingSpace returns the whitespace token immediately preceding el.
func leadingSpace(el *etree.Element) string {
	parent := el.Parent()
	idx := el.Index()
	if parent == nil || idx <= 0 {
		return ""
	}
	cd, ok := parent.Child[idx-1].(*etree.CharData)
	if !ok || !cd.IsWhitespace() {
		return ""
	}
	return cd.Data
}
