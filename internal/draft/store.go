package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds at most one non-terminal draft per user. All operations for
// one user are serialized on that user's slot; operations for different
// users proceed independently. The outer map lock is held only long enough
// to locate or create a slot, never across a transition.
type Store struct {
	mu     sync.RWMutex
	slots  map[string]*slot
	logger *zap.Logger

	idleTTL       time.Duration
	sweepInterval time.Duration
}

type slot struct {
	mu      sync.Mutex
	draft   *Draft // nil when the session is empty
	touched time.Time
}

// StoreConfig controls session expiry. Zero values disable the janitor.
type StoreConfig struct {
	// IdleTTL is how long a draft may sit without a transition before the
	// janitor discards it.
	IdleTTL time.Duration
	// SweepInterval is how often the janitor scans for idle drafts.
	SweepInterval time.Duration
}

// NewStore creates an empty session store.
func NewStore(cfg StoreConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		slots:         make(map[string]*slot),
		logger:        logger,
		idleTTL:       cfg.IdleTTL,
		sweepInterval: cfg.SweepInterval,
	}
}

// getSlot returns the slot for userID, creating it if absent.
func (s *Store) getSlot(userID string) *slot {
	s.mu.RLock()
	sl, ok := s.slots[userID]
	s.mu.RUnlock()
	if ok {
		return sl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok = s.slots[userID]; ok {
		return sl
	}
	sl = &slot{}
	s.slots[userID] = sl
	return sl
}

// Create stores a draft for its user. Returns ErrConflict if a
// non-terminal draft already occupies the session.
func (s *Store) Create(d *Draft) error {
	if d == nil || d.UserID == "" {
		return fmt.Errorf("draft with user id is required")
	}

	sl := s.getSlot(d.UserID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.draft != nil && !sl.draft.State.Terminal() {
		return ErrConflict
	}

	cp := *d
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	sl.draft = &cp
	sl.touched = now
	return nil
}

// Get returns a copy of the user's draft, or false if the session is empty.
// Reads do not contend with other users and do not reset the idle clock.
func (s *Store) Get(userID string) (*Draft, bool) {
	s.mu.RLock()
	sl, ok := s.slots[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.draft == nil {
		return nil, false
	}
	cp := *sl.draft
	return &cp, true
}

// Edit applies a content edit to the user's draft. Nil fields are left
// unchanged. Fails with ErrNoDraft on an empty session and
// ErrInvalidTransition unless the draft is Ready.
func (s *Store) Edit(userID string, subject, body *string) (*Draft, error) {
	sl := s.getSlot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.draft == nil {
		return nil, ErrNoDraft
	}
	if sl.draft.State != StateReady {
		return nil, fmt.Errorf("%w: cannot edit draft in state %q", ErrInvalidTransition, sl.draft.State)
	}

	if subject != nil {
		sl.draft.Subject = *subject
	}
	if body != nil {
		sl.draft.Body = *body
	}
	now := time.Now()
	sl.draft.UpdatedAt = now
	sl.touched = now

	cp := *sl.draft
	return &cp, nil
}

// Transition moves the user's draft from one state to another, matching by
// draft ID so a late caller cannot act on a successor draft. Fails with
// ErrNoDraft if the session is empty or holds a different draft, and
// ErrInvalidTransition if the draft is not in the expected state.
func (s *Store) Transition(userID, draftID string, from, to State) (*Draft, error) {
	sl := s.getSlot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.draft == nil || (draftID != "" && sl.draft.ID != draftID) {
		return nil, ErrNoDraft
	}
	if sl.draft.State != from {
		return nil, fmt.Errorf("%w: draft is %q, not %q", ErrInvalidTransition, sl.draft.State, from)
	}

	sl.draft.State = to
	now := time.Now()
	sl.draft.UpdatedAt = now
	sl.touched = now

	cp := *sl.draft
	if to.Terminal() {
		sl.draft = nil
	}
	return &cp, nil
}

// Clear empties the user's session unconditionally. Slots themselves are
// never removed from the map; lock order is always map before slot.
func (s *Store) Clear(userID string) {
	s.mu.RLock()
	sl, ok := s.slots[userID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	sl.mu.Lock()
	sl.draft = nil
	sl.mu.Unlock()
}

// Len returns the number of sessions currently holding a draft.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sl := range s.slots {
		sl.mu.Lock()
		if sl.draft != nil {
			n++
		}
		sl.mu.Unlock()
	}
	return n
}

// ExpireIdle discards drafts that have not seen a transition within ttl and
// returns the discarded copies. Sending drafts are skipped: the in-flight
// delivery settles the session when it returns.
func (s *Store) ExpireIdle(ttl time.Duration) []Draft {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-ttl)

	s.mu.RLock()
	candidates := make(map[string]*slot, len(s.slots))
	for id, sl := range s.slots {
		candidates[id] = sl
	}
	s.mu.RUnlock()

	var expired []Draft
	for _, sl := range candidates {
		sl.mu.Lock()
		if sl.draft != nil && sl.draft.State != StateSending && sl.touched.Before(cutoff) {
			cp := *sl.draft
			cp.State = StateDiscarded
			cp.UpdatedAt = time.Now()
			sl.draft = nil
			expired = append(expired, cp)
		}
		sl.mu.Unlock()
	}
	return expired
}

// Run sweeps idle sessions until ctx is cancelled. Returns immediately when
// expiry is disabled by config.
func (s *Store) Run(ctx context.Context) {
	if s.idleTTL <= 0 || s.sweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, d := range s.ExpireIdle(s.idleTTL) {
				s.logger.Info("session expired",
					zap.String("user_id", d.UserID),
					zap.String("draft_id", d.ID))
			}
		}
	}
}
