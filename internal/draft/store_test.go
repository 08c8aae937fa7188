package draft

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(StoreConfig{}, zap.NewNop())
}

func readyDraft(userID string) *Draft {
	return &Draft{
		ID:               "d-" + userID,
		UserID:           userID,
		RecipientName:    "Alice",
		RecipientAddress: "alice@co.com",
		Subject:          "Lunch?",
		Body:             "Want to grab lunch tomorrow?",
		Tone:             ToneCasual,
		State:            StateReady,
	}
}

func TestStoreCreate(t *testing.T) {
	t.Run("stores and returns a copy", func(t *testing.T) {
		s := newTestStore(t)
		d := readyDraft("u1")
		require.NoError(t, s.Create(d))

		got, ok := s.Get("u1")
		require.True(t, ok)
		assert.Equal(t, "Lunch?", got.Subject)

		// Mutating the returned copy must not leak into the store.
		got.Subject = "changed"
		again, ok := s.Get("u1")
		require.True(t, ok)
		assert.Equal(t, "Lunch?", again.Subject)
	})

	t.Run("rejects a second non-terminal draft", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		err := s.Create(readyDraft("u1"))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rejects draft without user id", func(t *testing.T) {
		s := newTestStore(t)
		assert.Error(t, s.Create(&Draft{}))
		assert.Error(t, s.Create(nil))
	})

	t.Run("users do not collide", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))
		require.NoError(t, s.Create(readyDraft("u2")))
		assert.Equal(t, 2, s.Len())
	})
}

func TestStoreEdit(t *testing.T) {
	t.Run("updates subject and body in place", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		subject := "Lunch Thursday?"
		got, err := s.Edit("u1", &subject, nil)
		require.NoError(t, err)
		assert.Equal(t, "Lunch Thursday?", got.Subject)
		assert.Equal(t, "Want to grab lunch tomorrow?", got.Body)
		assert.Equal(t, StateReady, got.State)
	})

	t.Run("fails on empty session", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Edit("u1", nil, nil)
		assert.ErrorIs(t, err, ErrNoDraft)
	})

	t.Run("rejects edits outside Ready", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))
		_, err := s.Transition("u1", "", StateReady, StateSending)
		require.NoError(t, err)

		subject := "too late"
		_, err = s.Edit("u1", &subject, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestStoreTransition(t *testing.T) {
	t.Run("terminal transition clears the session", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		_, err := s.Transition("u1", "", StateReady, StateSending)
		require.NoError(t, err)
		sent, err := s.Transition("u1", "", StateSending, StateSent)
		require.NoError(t, err)
		assert.Equal(t, StateSent, sent.State)

		_, ok := s.Get("u1")
		assert.False(t, ok)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("rejects wrong from-state", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		_, err := s.Transition("u1", "", StateSending, StateSent)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("rejects mismatched draft id", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		_, err := s.Transition("u1", "someone-elses-draft", StateReady, StateSending)
		assert.ErrorIs(t, err, ErrNoDraft)
	})

	t.Run("fails on empty session", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Transition("u1", "", StateReady, StateSending)
		assert.ErrorIs(t, err, ErrNoDraft)
	})
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(readyDraft("u1")))

	s.Clear("u1")
	_, ok := s.Get("u1")
	assert.False(t, ok)

	// Clearing an unknown user is a no-op.
	s.Clear("nobody")

	// The slot is reusable after clearing.
	require.NoError(t, s.Create(readyDraft("u1")))
}

func TestStoreConcurrentCreate(t *testing.T) {
	// Two concurrent creates for one user: exactly one wins, the other
	// observes the conflict. Never two drafts for the same user.
	s := newTestStore(t)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(readyDraft("u1"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(t, errors.Is(err, ErrConflict))
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, s.Len())
}

func TestStoreExpireIdle(t *testing.T) {
	t.Run("discards idle drafts", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		// Backdate the slot's touch time.
		s.getSlot("u1").touched = time.Now().Add(-time.Hour)

		expired := s.ExpireIdle(30 * time.Minute)
		require.Len(t, expired, 1)
		assert.Equal(t, StateDiscarded, expired[0].State)

		_, ok := s.Get("u1")
		assert.False(t, ok)
	})

	t.Run("keeps fresh drafts", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))

		assert.Empty(t, s.ExpireIdle(30*time.Minute))
		_, ok := s.Get("u1")
		assert.True(t, ok)
	})

	t.Run("skips in-flight sends", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))
		_, err := s.Transition("u1", "", StateReady, StateSending)
		require.NoError(t, err)

		s.getSlot("u1").touched = time.Now().Add(-time.Hour)
		assert.Empty(t, s.ExpireIdle(30*time.Minute))

		got, ok := s.Get("u1")
		require.True(t, ok)
		assert.Equal(t, StateSending, got.State)
	})

	t.Run("disabled with zero ttl", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Create(readyDraft("u1")))
		s.getSlot("u1").touched = time.Now().Add(-time.Hour)
		assert.Empty(t, s.ExpireIdle(0))
	})
}
