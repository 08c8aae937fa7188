package draft

import (
	"errors"
	"fmt"
)

var (
	// ErrContactNotFound means the resolver had no entry for the name.
	// Recoverable by re-entering a corrected name; no draft is created.
	ErrContactNotFound = errors.New("contact not found")

	// ErrNoDraft means the session holds no draft for the user.
	ErrNoDraft = errors.New("no draft in session")

	// ErrConflict means a non-terminal draft already occupies the session.
	// Callers should reuse the existing draft rather than create a second.
	ErrConflict = errors.New("draft already in session")

	// ErrInvalidTransition guards edits and sends against a draft that is
	// not in a state permitting them. Never silently dropped.
	ErrInvalidTransition = errors.New("invalid draft transition")

	// ErrUnknownTone rejects tone labels outside the closed set.
	ErrUnknownTone = errors.New("unknown tone")
)

// GenerationError wraps a failed generation attempt. The session is left
// empty: both subject and body must be present before a draft is stored.
type GenerationError struct {
	Cause string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("draft generation failed: %s: %v", e.Cause, e.Err)
	}
	return "draft generation failed: " + e.Cause
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DeliveryError wraps a failed delivery attempt. Cause is human-readable
// and passed through to the front end unchanged; the draft stays Ready so
// the user can retry without re-generating.
type DeliveryError struct {
	Cause string
	Err   error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery failed: %s: %v", e.Cause, e.Err)
	}
	return "delivery failed: " + e.Cause
}

func (e *DeliveryError) Unwrap() error { return e.Err }
