package render

import "fmt"

// RenderError reports a failed render run. Stderr carries the tail of the
// process output, which feeds the code repair prompt.
type RenderError struct {
	RequestID string
	Stderr    string
	Err       error
}

func (e *RenderError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("render failed for %s: %v: %s", e.RequestID, e.Err, e.Stderr)
	}
	return fmt.Sprintf("render failed for %s: %v", e.RequestID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
