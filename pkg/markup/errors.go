package markup

import "fmt"

// MarkupError reports page markup that still fails to parse after
// normalization. It aborts a generator run.
type MarkupError struct {
	Address string
	Line    int
	Msg     string
}

func (e *MarkupError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("markup error in page %q (line %d): %s", e.Address, e.Line, e.Msg)
	}
	return fmt.Sprintf("markup error in page %q: %s", e.Address, e.Msg)
}
