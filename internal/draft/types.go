package draft

import (
	"fmt"
	"strings"
	"time"
)

// State is a draft lifecycle state.
type State string

const (
	// StatePending is the window between a successful contact resolution
	// and the generator returning. No draft is stored while Pending.
	StatePending State = "pending"
	// StateReady means the draft is held for human review and edit.
	StateReady State = "ready"
	// StateSending means a delivery attempt is in flight.
	StateSending State = "sending"
	// StateSent is terminal: delivery succeeded.
	StateSent State = "sent"
	// StateDiscarded is terminal: the user (or the idle janitor) dropped the draft.
	StateDiscarded State = "discarded"
	// StateFailed marks a pre-draft failure (resolution or generation).
	// Drafts never persist in this state.
	StateFailed State = "failed"
)

// Terminal reports whether no further transition is permitted from s.
func (s State) Terminal() bool {
	return s == StateSent || s == StateDiscarded
}

// Tone is an opaque label passed through to the generator. The set is
// closed at the front-end boundary; the lifecycle does not interpret it.
type Tone string

const (
	ToneFormal   Tone = "Formal"
	ToneCasual   Tone = "Casual"
	ToneUrgent   Tone = "Urgent"
	ToneFriendly Tone = "Friendly"
)

// Tones lists the accepted tone labels, in display order.
func Tones() []Tone {
	return []Tone{ToneFormal, ToneCasual, ToneUrgent, ToneFriendly}
}

// ParseTone matches a label case-insensitively. Empty input defaults to Formal.
func ParseTone(s string) (Tone, error) {
	if s == "" {
		return ToneFormal, nil
	}
	for _, t := range Tones() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
}

// Request is the ephemeral input to a requestDraft command. It is not
// retained after producing a Draft or an error.
type Request struct {
	UserID        string
	RecipientName string
	Intent        string
	Tone          Tone
}

// Validate checks the fields a front end must supply.
func (r Request) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(r.RecipientName) == "" {
		return fmt.Errorf("recipient name is required")
	}
	if strings.TrimSpace(r.Intent) == "" {
		return fmt.Errorf("intent is required")
	}
	return nil
}

// Draft is an in-progress, editable email candidate.
//
// RecipientAddress is fixed at creation time to the resolver's output for
// RecipientName; edits may touch Subject and Body only. Changing the
// recipient means discarding and starting over.
type Draft struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RecipientName    string    `json:"recipient_name"`
	RecipientAddress string    `json:"recipient_address"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	Tone             Tone      `json:"tone"`
	State            State     `json:"state"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
