package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/metrics"
)

// Resolver maps a free-text contact name to an address. A missing entry is
// not an error: the caller's only valid reaction is asking for another name.
type Resolver interface {
	Resolve(name string) (address string, ok bool)
}

// Generator produces a subject and body for a draft request. Failures must
// come back as errors, never panics; the controller converts anything that
// is not already a *GenerationError.
type Generator interface {
	Generate(ctx context.Context, recipientName, intent string, tone Tone) (subject, body string, err error)
}

// Dispatcher delivers a finished draft. One attempt per call; no internal
// retry. The controller keeps a failed draft retryable.
type Dispatcher interface {
	Deliver(ctx context.Context, address, subject, body string) error
}

// Controller orchestrates the draft lifecycle. It is the only writer of the
// session store; front ends issue commands and render the returned drafts.
type Controller struct {
	store      *Store
	resolver   Resolver
	generator  Generator
	dispatcher Dispatcher
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewController wires the lifecycle dependencies. metrics may be nil.
func NewController(store *Store, resolver Resolver, generator Generator, dispatcher Dispatcher, logger *zap.Logger, m *metrics.Metrics) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:      store,
		resolver:   resolver,
		generator:  generator,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    m,
	}, nil
}

// RequestDraft resolves the contact, invokes generation, and stores the
// resulting Ready draft. If the session already holds a non-terminal draft
// the existing draft is returned instead of creating a second one; a
// double-submit is not an error. On resolution or generation failure no
// draft is created and the session stays empty.
func (c *Controller) RequestDraft(ctx context.Context, req Request) (*Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, ok := c.store.Get(req.UserID); ok && !existing.State.Terminal() {
		c.logger.Debug("reusing existing draft",
			zap.String("user_id", req.UserID),
			zap.String("draft_id", existing.ID))
		return existing, nil
	}

	address, ok := c.resolver.Resolve(req.RecipientName)
	if !ok {
		c.metrics.GenerationFailed()
		return nil, fmt.Errorf("%w: %q", ErrContactNotFound, req.RecipientName)
	}

	subject, body, err := c.generator.Generate(ctx, req.RecipientName, req.Intent, req.Tone)
	if err != nil {
		c.metrics.GenerationFailed()
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = &GenerationError{Cause: "generator error", Err: err}
		}
		c.logger.Warn("draft generation failed",
			zap.String("user_id", req.UserID),
			zap.String("recipient", req.RecipientName),
			zap.Error(err))
		return nil, genErr
	}
	if subject == "" || body == "" {
		c.metrics.GenerationFailed()
		return nil, &GenerationError{Cause: "generator returned an incomplete draft"}
	}

	d := &Draft{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		RecipientName:    req.RecipientName,
		RecipientAddress: address,
		Subject:          subject,
		Body:             body,
		Tone:             req.Tone,
		State:            StateReady,
	}

	if err := c.store.Create(d); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost a create race; serve the winner's draft.
			if winner, ok := c.store.Get(req.UserID); ok {
				return winner, nil
			}
			return nil, ErrConflict
		}
		return nil, err
	}

	c.metrics.DraftGenerated()
	c.logger.Info("draft ready",
		zap.String("user_id", req.UserID),
		zap.String("draft_id", d.ID),
		zap.String("recipient", address),
		zap.String("tone", string(req.Tone)))

	cp := *d
	return &cp, nil
}

// Get returns the user's current draft, if any.
func (c *Controller) Get(userID string) (*Draft, bool) {
	return c.store.Get(userID)
}

// EditContent updates subject and/or body of a Ready draft. Nil fields are
// left untouched. The recipient address is not editable.
func (c *Controller) EditContent(ctx context.Context, userID string, subject, body *string) (*Draft, error) {
	return c.store.Edit(userID, subject, body)
}

// ConfirmSend moves a Ready draft to Sending, invokes delivery, and settles
// the session on the result. Success clears the session; failure returns
// the draft to Ready untouched so the user can retry or discard. No user
// lock is held across the delivery call, so a concurrent discard can clear
// the session mid-flight; the late result is then dropped.
func (c *Controller) ConfirmSend(ctx context.Context, userID string) (*Draft, error) {
	d, err := c.store.Transition(userID, "", StateReady, StateSending)
	if err != nil {
		return nil, err
	}

	deliverErr := c.dispatcher.Deliver(ctx, d.RecipientAddress, d.Subject, d.Body)

	if deliverErr == nil {
		sent, terr := c.store.Transition(userID, d.ID, StateSending, StateSent)
		if terr != nil {
			// Session discarded while the send was in flight. The mail went
			// out; there is no state left to update.
			c.logger.Warn("delivery result dropped: session cleared mid-send",
				zap.String("user_id", userID),
				zap.String("draft_id", d.ID))
			cp := *d
			cp.State = StateSent
			return &cp, nil
		}
		c.metrics.DraftSent()
		c.logger.Info("draft sent",
			zap.String("user_id", userID),
			zap.String("draft_id", d.ID),
			zap.String("recipient", d.RecipientAddress))
		return sent, nil
	}

	c.metrics.DeliveryFailed()
	if _, terr := c.store.Transition(userID, d.ID, StateSending, StateReady); terr != nil {
		c.logger.Warn("delivery failure dropped: session cleared mid-send",
			zap.String("user_id", userID),
			zap.String("draft_id", d.ID))
	}

	var delErr *DeliveryError
	if !errors.As(deliverErr, &delErr) {
		delErr = &DeliveryError{Cause: deliverErr.Error(), Err: deliverErr}
	}
	c.logger.Warn("delivery failed",
		zap.String("user_id", userID),
		zap.String("draft_id", d.ID),
		zap.String("cause", delErr.Cause))
	return nil, delErr
}

// Discard drops the user's draft and clears the session. A draft that is
// Sending may still be discarded; the in-flight delivery result is dropped
// when it returns.
func (c *Controller) Discard(ctx context.Context, userID string) (*Draft, error) {
	d, ok := c.store.Get(userID)
	if !ok {
		return nil, ErrNoDraft
	}

	if d.State == StateSending {
		c.store.Clear(userID)
		c.metrics.DraftDiscarded()
		c.logger.Info("draft discarded while sending",
			zap.String("user_id", userID),
			zap.String("draft_id", d.ID))
		d.State = StateDiscarded
		return d, nil
	}

	discarded, err := c.store.Transition(userID, d.ID, StateReady, StateDiscarded)
	if err != nil {
		return nil, err
	}
	c.metrics.DraftDiscarded()
	c.logger.Info("draft discarded",
		zap.String("user_id", userID),
		zap.String("draft_id", discarded.ID))
	return discarded, nil
}
