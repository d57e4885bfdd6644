package rewrite

import (
	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// ParentVersion moves the parent reference from the parent's original version
// to its target version. A reference that does not point at the original
// version is left alone, as is a parent missing from Original.
type ParentVersion struct {
	Original versionmap.Map
	Versions versionmap.Map
}

func (ParentVersion) change() {}

// Name implements Change.
func (ParentVersion) Name() string { return "Update Parent Version" }

// Apply implements Change.
func (c ParentVersion) Apply(m *project.Module, root doc.Node) (Result, error) {
	var res Result
	if !m.HasParent() {
		return res, nil
	}
	node := doc.Path(root, root.Namespace(), "parent", "version")
	if node == nil {
		return res, nil
	}

	key := m.ParentKey.String()
	original, ok := c.Original.Lookup(key)
	if !ok || node.Text() != original {
		return res, nil
	}
	target, err := lookup(c.Versions, key)
	if err != nil {
		return res, err
	}

	res.logf("updating parent %s version '%s' to '%s'", key, original, target)
	node.SetText(target)
	res.Modified = true
	return res, nil
}
