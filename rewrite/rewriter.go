package rewrite

import (
	"errors"
	"log/slog"

	"github.com/albertocavalcante/go-relflow/project"
)

var errNoDocument = errors.New("module has no descriptor document")

// Rewriter applies changesets to module documents.
type Rewriter struct {
	logger *slog.Logger
}

// NewRewriter returns a Rewriter logging change descriptions at debug level
// to logger. A nil logger discards output.
func NewRewriter(logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rewriter{logger: logger}
}

// Apply runs every change of cs against m's document, stopping at the first
// failure. The returned report covers the changes applied before a failure.
func (w *Rewriter) Apply(m *project.Module, cs *Changeset) (Report, error) {
	key := m.Key.String()
	report := Report{Module: key}
	if m.Doc == nil {
		return report, &RewriteError{Module: key, Change: "load", Err: errNoDocument}
	}
	root := m.Doc.Root()

	for _, c := range cs.changes {
		res, err := c.Apply(m, root)
		if err != nil {
			w.logger.Debug("change failed", "module", key, "change", c.Name(), "error", err)
			return report, &RewriteError{Module: key, Change: c.Name(), Err: err}
		}
		entry := Entry{Change: c.Name(), Result: res}
		report.Entries = append(report.Entries, entry)
		report.Modified = report.Modified || res.Modified
		w.logger.Debug(entry.Description(), "module", key)
	}
	return report, nil
}

// ApplyAll applies cs to each module in order and stops at the first module
// whose pass fails. Modules before it stay rewritten.
func (w *Rewriter) ApplyAll(modules []*project.Module, cs *Changeset) ([]Report, error) {
	reports := make([]Report, 0, len(modules))
	for _, m := range modules {
		r, err := w.Apply(m, cs)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
