package rewrite

import "slices"

// Changeset is an ordered list of changes for one rewrite pass. By
// convention the order is parent version, own version, dependency versions,
// SCM tag; no change reads the effects of an earlier one.
type Changeset struct {
	changes []Change
}

// NewChangeset returns a changeset holding changes.
func NewChangeset(changes ...Change) *Changeset {
	return &Changeset{changes: slices.Clone(changes)}
}

// With appends changes and returns c.
func (c *Changeset) With(changes ...Change) *Changeset {
	c.changes = append(c.changes, changes...)
	return c
}

// Changes returns the changes in order.
func (c *Changeset) Changes() []Change {
	return slices.Clone(c.changes)
}

// Len returns the number of changes.
func (c *Changeset) Len() int {
	return len(c.changes)
}

// Entry is the result of one change within a pass.
type Entry struct {
	Change string
	Result
}

// Description formats the entry's work log.
func (e Entry) Description() string {
	return Describe(e.Change, e.Log)
}

// Report is the outcome of a pass over one module.
type Report struct {
	// Module is the key of the rewritten module.
	Module string

	// Modified is true when any change modified the document.
	Modified bool

	// Entries holds one entry per applied change, in order.
	Entries []Entry
}

// Descriptions returns the formatted work log of every applied change.
func (r Report) Descriptions() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Description()
	}
	return out
}
