// Package bzldoc implements the doc capability for MODULE.bazel files on top
// of github.com/bazelbuild/buildtools/build.
//
// A MODULE.bazel file is exposed as a descriptor tree:
//
//	module                      root; children are the module() keyword arguments
//	├── artifactId              module(name = ...)
//	├── version                 module(version = ...)
//	├── compatibility_level ... other keyword arguments, under their own names
//	├── dependencies
//	│   └── dependency          one per bazel_dep(); children are its keyword arguments
//	└── dependencyManagement
//	    └── dependencies
//	        └── dependency      one per single_version_override()
//
// Only keyword arguments carry text. Inserting under the root adds a keyword
// argument to module(), inserting under a dependency adds one to the call it
// wraps. The synthesized containers cannot be mutated.
package bzldoc

import (
	"fmt"
	"io"
	"os"

	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/internal/buildutil"
	"github.com/bazelbuild/buildtools/build"
)

// Group is the group under which Bazel modules are keyed. Bazel module names
// are globally unique, so all modules share it.
const Group = "bzlmod"

// FileName is the conventional descriptor file name.
const FileName = "MODULE.bazel"

// Position represents a source position for diagnostics.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     Position
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Pos.Filename, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// Document is a parsed MODULE.bazel file.
type Document struct {
	file *build.File
}

var _ doc.Document = (*Document)(nil)

// ParseFile reads and parses a MODULE.bazel file from disk.
func ParseFile(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return Parse(filename, data)
}

// Parse parses MODULE.bazel content.
func Parse(filename string, content []byte) (*Document, error) {
	f, err := build.ParseModule(filename, content)
	if err != nil {
		return nil, &ParseError{
			Pos:     Position{Filename: filename},
			Message: fmt.Sprintf("syntax error: %v", err),
			Wrapped: err,
		}
	}
	if calls := buildutil.Calls(f, "module"); len(calls) > 1 {
		start, _ := calls[1].Span()
		return nil, &ParseError{
			Pos:     Position{Filename: filename, Line: start.Line, Column: start.LineRune},
			Message: "module() may only be called once",
		}
	}
	return &Document{file: f}, nil
}

// Raw returns the underlying buildtools File.
func (d *Document) Raw() *build.File {
	return d.file
}

// ModuleName returns module(name = ...), or "" when absent.
func (d *Document) ModuleName() string {
	if call := d.moduleCall(); call != nil {
		return buildutil.String(call, "name")
	}
	return ""
}

// ModuleVersion returns module(version = ...), or "" when absent.
func (d *Document) ModuleVersion() string {
	if call := d.moduleCall(); call != nil {
		return buildutil.String(call, "version")
	}
	return ""
}

// Root returns the module node.
func (d *Document) Root() doc.Node {
	return &rootNode{d: d}
}

// DefaultNamespace always returns "": MODULE.bazel has no namespaces.
func (d *Document) DefaultNamespace() string {
	return ""
}

// WriteTo writes the formatted file to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(build.Format(d.file))
	return int64(n), err
}

// Bytes returns the formatted file.
func (d *Document) Bytes() []byte {
	return build.Format(d.file)
}

func (d *Document) moduleCall() *build.CallExpr {
	if calls := buildutil.Calls(d.file, "module"); len(calls) > 0 {
		return calls[0]
	}
	return nil
}

// aliases maps keyword argument names to node names, per call kind.
var aliases = map[string]map[string]string{
	"module":                  {"name": "artifactId"},
	"bazel_dep":               {"name": "artifactId"},
	"single_version_override": {"module_name": "artifactId"},
}

func nodeName(fn, kwarg string) string {
	if alias, ok := aliases[fn][kwarg]; ok {
		return alias
	}
	return kwarg
}

func kwargName(fn, node string) string {
	for kwarg, alias := range aliases[fn] {
		if alias == node {
			return kwarg
		}
	}
	return node
}

func kwargNodes(call *build.CallExpr) []doc.Node {
	fn := buildutil.FuncName(call)
	var out []doc.Node
	for _, assign := range buildutil.Kwargs(call) {
		out = append(out, &kwargNode{
			name:   nodeName(fn, buildutil.KwargName(assign)),
			assign: assign,
		})
	}
	return out
}

func insertKwarg(call *build.CallExpr, index int, name string) (doc.Node, error) {
	n := len(buildutil.Kwargs(call))
	if index < 0 || index > n {
		return nil, fmt.Errorf("insert %q at %d: index out of range [0,%d]", name, index, n)
	}
	fn := buildutil.FuncName(call)
	assign := buildutil.InsertString(call, index, kwargName(fn, name), "")
	return &kwargNode{name: name, assign: assign}, nil
}

func indexOf(children []doc.Node, child doc.Node) int {
	for i, c := range children {
		if same(c, child) {
			return i
		}
	}
	return -1
}

func childNamed(children []doc.Node, name, namespace string) doc.Node {
	if namespace != "" {
		return nil
	}
	for _, c := range children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// same reports whether two wrappers refer to the same underlying syntax.
func same(a, b doc.Node) bool {
	switch x := a.(type) {
	case *kwargNode:
		y, ok := b.(*kwargNode)
		return ok && x.assign == y.assign
	case *callNode:
		y, ok := b.(*callNode)
		return ok && x.call == y.call
	case *containerNode:
		y, ok := b.(*containerNode)
		return ok && x.d == y.d && x.path == y.path
	case *rootNode:
		y, ok := b.(*rootNode)
		return ok && x.d == y.d
	}
	return false
}

type rootNode struct {
	d *Document
}

func (r *rootNode) Name() string      { return "module" }
func (r *rootNode) Namespace() string { return "" }
func (r *rootNode) Text() string      { return "" }
func (r *rootNode) SetText(string)    {}

func (r *rootNode) Children() []doc.Node {
	var out []doc.Node
	if call := r.d.moduleCall(); call != nil {
		out = kwargNodes(call)
	}
	if len(buildutil.Calls(r.d.file, "bazel_dep")) > 0 {
		out = append(out, &containerNode{d: r.d, path: "dependencies"})
	}
	if len(buildutil.Calls(r.d.file, "single_version_override")) > 0 {
		out = append(out, &containerNode{d: r.d, path: "dependencyManagement"})
	}
	return out
}

func (r *rootNode) Child(name, namespace string) doc.Node {
	return childNamed(r.Children(), name, namespace)
}

func (r *rootNode) IndexOf(child doc.Node) int {
	return indexOf(r.Children(), child)
}

func (r *rootNode) InsertChildAt(index int, name string) (doc.Node, error) {
	call := r.d.moduleCall()
	if call == nil {
		return nil, fmt.Errorf("insert %q: file has no module() call: %w", name, doc.ErrUnsupported)
	}
	return insertKwarg(call, index, name)
}

// containerNode is a synthesized grouping node. path identifies it:
// "dependencies", "dependencyManagement" or "dependencyManagement/dependencies".
type containerNode struct {
	d    *Document
	path string
}

func (c *containerNode) Name() string {
	if c.path == "dependencyManagement" {
		return "dependencyManagement"
	}
	return "dependencies"
}

func (c *containerNode) Namespace() string { return "" }
func (c *containerNode) Text() string      { return "" }
func (c *containerNode) SetText(string)    {}

func (c *containerNode) Children() []doc.Node {
	var fn string
	switch c.path {
	case "dependencyManagement":
		return []doc.Node{&containerNode{d: c.d, path: "dependencyManagement/dependencies"}}
	case "dependencies":
		fn = "bazel_dep"
	default:
		fn = "single_version_override"
	}
	var out []doc.Node
	for _, call := range buildutil.Calls(c.d.file, fn) {
		out = append(out, &callNode{call: call})
	}
	return out
}

func (c *containerNode) Child(name, namespace string) doc.Node {
	return childNamed(c.Children(), name, namespace)
}

func (c *containerNode) IndexOf(child doc.Node) int {
	return indexOf(c.Children(), child)
}

func (c *containerNode) InsertChildAt(_ int, name string) (doc.Node, error) {
	return nil, fmt.Errorf("insert %q into %s: %w", name, c.path, doc.ErrUnsupported)
}

// callNode wraps a bazel_dep() or single_version_override() call.
type callNode struct {
	call *build.CallExpr
}

func (c *callNode) Name() string      { return "dependency" }
func (c *callNode) Namespace() string { return "" }
func (c *callNode) Text() string      { return "" }
func (c *callNode) SetText(string)    {}

func (c *callNode) Children() []doc.Node {
	return kwargNodes(c.call)
}

// Child also answers "groupId" with the fixed Group, which is not part of
// Children since no keyword argument backs it.
func (c *callNode) Child(name, namespace string) doc.Node {
	if name == "groupId" && namespace == "" {
		return groupNode{}
	}
	return childNamed(c.Children(), name, namespace)
}

func (c *callNode) IndexOf(child doc.Node) int {
	return indexOf(c.Children(), child)
}

func (c *callNode) InsertChildAt(index int, name string) (doc.Node, error) {
	return insertKwarg(c.call, index, name)
}

// groupNode is the read-only group of a dependency call.
type groupNode struct{}

func (groupNode) Name() string                  { return "groupId" }
func (groupNode) Namespace() string             { return "" }
func (groupNode) Text() string                  { return Group }
func (groupNode) SetText(string)                {}
func (groupNode) Children() []doc.Node          { return nil }
func (groupNode) Child(string, string) doc.Node { return nil }
func (groupNode) IndexOf(doc.Node) int          { return -1 }

func (groupNode) InsertChildAt(_ int, name string) (doc.Node, error) {
	return nil, fmt.Errorf("insert %q under groupId: %w", name, doc.ErrUnsupported)
}

// kwargNode wraps one keyword argument; it is a leaf.
type kwargNode struct {
	name   string
	assign *build.AssignExpr
}

func (k *kwargNode) Name() string      { return k.name }
func (k *kwargNode) Namespace() string { return "" }

func (k *kwargNode) Text() string {
	switch v := k.assign.RHS.(type) {
	case *build.StringExpr:
		return v.Value
	case *build.LiteralExpr:
		return v.Token
	case *build.Ident:
		return v.Name
	}
	return ""
}

func (k *kwargNode) SetText(s string) {
	k.assign.RHS = &build.StringExpr{Value: s}
}

func (k *kwargNode) Children() []doc.Node          { return nil }
func (k *kwargNode) Child(string, string) doc.Node { return nil }
func (k *kwargNode) IndexOf(doc.Node) int          { return -1 }

func (k *kwargNode) InsertChildAt(_ int, name string) (doc.Node, error) {
	return nil, fmt.Errorf("insert %q under %s: %w", name, k.name, doc.ErrUnsupported)
}
