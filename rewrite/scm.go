package rewrite

import (
	"strings"

	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// DefaultTagFormat is the tag template used when ScmTag.Format is empty.
const DefaultTagFormat = "${artifactId}-${version}"

// HeadTag is the tag value for branches without a permanent tag.
const HeadTag = "HEAD"

// ScmTag writes the expanded tag template into scm/tag. The template may
// reference ${artifactId}, ${groupId} and ${version}, optionally prefixed
// with "project.". Modules without an scm/tag element are not modified, but
// their target version must still resolve.
type ScmTag struct {
	Versions versionmap.Map
	Format   string
}

func (ScmTag) change() {}

// Name implements Change.
func (ScmTag) Name() string { return "Update SCM Tag" }

// Apply implements Change.
func (c ScmTag) Apply(m *project.Module, root doc.Node) (Result, error) {
	target, err := c.resolve(m)
	if err != nil {
		return Result{}, err
	}
	format := c.Format
	if format == "" {
		format = DefaultTagFormat
	}
	return setTag(root, ExpandTag(format, m, target))
}

func (c ScmTag) resolve(m *project.Module) (string, error) {
	v, ok := c.Versions.Lookup(m.Key.String())
	if !ok {
		return "", &MissingVersionError{Module: m.DisplayName()}
	}
	return v, nil
}

// ScmHeadTag sets scm/tag to HEAD. The module's target version must resolve
// even though it is not written.
type ScmHeadTag struct {
	Versions versionmap.Map
}

func (ScmHeadTag) change() {}

// Name implements Change.
func (ScmHeadTag) Name() string { return "Update SCM Tag to HEAD" }

// Apply implements Change.
func (c ScmHeadTag) Apply(m *project.Module, root doc.Node) (Result, error) {
	if _, ok := c.Versions.Lookup(m.Key.String()); !ok {
		return Result{}, &MissingVersionError{Module: m.DisplayName()}
	}
	return setTag(root, HeadTag)
}

func setTag(root doc.Node, tag string) (Result, error) {
	var res Result
	node := doc.Path(root, root.Namespace(), "scm", "tag")
	if node == nil {
		return res, nil
	}
	res.logf("updating scm tag '%s' to '%s'", node.Text(), tag)
	node.SetText(tag)
	res.Modified = true
	return res, nil
}

// ExpandTag substitutes the module coordinates and version into format.
func ExpandTag(format string, m *project.Module, version string) string {
	r := strings.NewReplacer(
		"${project.artifactId}", m.Key.Artifact(),
		"${project.groupId}", m.Key.Group(),
		"${project.version}", version,
		"${artifactId}", m.Key.Artifact(),
		"${groupId}", m.Key.Group(),
		"${version}", version,
	)
	return r.Replace(format)
}
