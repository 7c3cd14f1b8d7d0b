package printer

import "fmt"

// OverrideConflictError reports an extras member whose name collides with a
// generated member of the same container. The extras file is stale or
// duplicated and must be fixed at the source.
type OverrideConflictError struct {
	Kind      Kind
	Container string
	Member    string
}

func (e *OverrideConflictError) Error() string {
	return fmt.Sprintf("extras member %q conflicts with generated member of %s %q", e.Member, e.Kind, e.Container)
}
