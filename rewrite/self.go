package rewrite

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-relflow/doc"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// SelfVersion sets the module's own version.
//
// An explicit version node is always overwritten and reported as modified,
// even when it already holds the target. A module inheriting its version
// gets a version node after its artifactId only when the target differs from
// the parent's target.
type SelfVersion struct {
	Versions versionmap.Map
}

func (SelfVersion) change() {}

// Name implements Change.
func (SelfVersion) Name() string { return "Update Project Version" }

// Apply implements Change.
func (c SelfVersion) Apply(m *project.Module, root doc.Node) (Result, error) {
	var res Result
	ns := root.Namespace()

	target, ok := c.Versions.Lookup(m.Key.String())
	if !ok {
		return res, &MissingVersionError{Module: m.DisplayName()}
	}

	if node := root.Child("version", ns); node != nil {
		res.logf("updating version '%s' to '%s'", node.Text(), target)
		node.SetText(target)
		res.Modified = true
		return res, nil
	}

	var parentTarget string
	if m.HasParent() {
		parentTarget, _ = c.Versions.Lookup(m.ParentKey.String())
	}
	if target == parentTarget {
		return res, nil
	}

	artifact := root.Child("artifactId", ns)
	if artifact == nil {
		return res, errors.New("descriptor has no artifactId")
	}
	node, err := root.InsertChildAt(root.IndexOf(artifact)+1, "version")
	if err != nil {
		return res, fmt.Errorf("insert version: %w", err)
	}
	node.SetText(target)
	res.logf("setting version to '%s'", target)
	res.Modified = true
	return res, nil
}
