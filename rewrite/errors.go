package rewrite

import "fmt"

// MissingVersionError reports that no target version could be resolved for a
// module and the consistency fallback did not apply.
type MissingVersionError struct {
	// Module is the module name or key the lookup was made for.
	Module string
}

func (e *MissingVersionError) Error() string {
	return fmt.Sprintf("release version for %s not found", e.Module)
}

// RewriteError reports a failed change. It wraps the change's error.
type RewriteError struct {
	Module string
	Change string
	Err    error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("rewrite %s: %s: %v", e.Module, e.Change, e.Err)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}
