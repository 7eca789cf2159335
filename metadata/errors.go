package metadata

import (
	"errors"
	"fmt"
)

// ErrParse marks a ValidationError caused by malformed JSON rather than by the schema.
var ErrParse = errors.New("JSON parse error")

// ValidationError is returned when a document cannot be accepted, either because it is
// not JSON (errors.Is(err, ErrParse)) or because it breaks the schema.
type ValidationError struct {
	Label   string // file path or other name of the document
	Message string // human-readable explanation
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("kiro file %s failed to validate: %s", e.Label, e.Message)
	}
	return "kiro file failed to validate: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StructuralError reports a broken alt_for reference. These are authoring mistakes
// in the metadata and abort the operation that hit them.
type StructuralError struct {
	Keyset string
	AltFor string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("keyset %q alt_for %q: %s", e.Keyset, e.AltFor, e.Reason)
}
