package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
)

// RequestDraftBody is the request body for POST /api/v1/drafts.
type RequestDraftBody struct {
	UserID        string `json:"user_id"`
	RecipientName string `json:"recipient_name"`
	Intent        string `json:"intent"`
	Tone          string `json:"tone"`
}

// EditDraftBody is the request body for PATCH /api/v1/drafts/:user_id.
// Nil fields are left unchanged.
type EditDraftBody struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// ContactResponse is the response body for GET /api/v1/contacts/:name.
type ContactResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleResolveContact previews a contact lookup for the form.
func (s *Server) handleResolveContact(c echo.Context) error {
	name := c.Param("name")
	address, ok := s.resolver.Resolve(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	}
	return c.JSON(http.StatusOK, ContactResponse{Name: name, Address: address})
}

// handleRequestDraft resolves, generates, and stores a draft. A session
// that already holds a draft gets that draft back rather than a second one.
func (s *Server) handleRequestDraft(c echo.Context) error {
	var body RequestDraftBody
	if err := c.Bind(&body); err != nil {
		s.logger.Warn("invalid draft request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	tone, err := draft.ParseTone(body.Tone)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d, err := s.lifecycle.RequestDraft(c.Request().Context(), draft.Request{
		UserID:        body.UserID,
		RecipientName: body.RecipientName,
		Intent:        body.Intent,
		Tone:          tone,
	})
	if err != nil {
		return s.lifecycleError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

// handleGetDraft renders the user's current draft.
func (s *Server) handleGetDraft(c echo.Context) error {
	d, ok := s.lifecycle.Get(c.Param("user_id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no draft in session")
	}
	return c.JSON(http.StatusOK, d)
}

// handleEditDraft applies a content edit to a Ready draft.
func (s *Server) handleEditDraft(c echo.Context) error {
	var body EditDraftBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	d, err := s.lifecycle.EditContent(c.Request().Context(), c.Param("user_id"), body.Subject, body.Body)
	if err != nil {
		return s.lifecycleError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// handleSendDraft confirms the draft and dispatches it.
func (s *Server) handleSendDraft(c echo.Context) error {
	d, err := s.lifecycle.ConfirmSend(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return s.lifecycleError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// handleDiscardDraft drops the draft and clears the session.
func (s *Server) handleDiscardDraft(c echo.Context) error {
	d, err := s.lifecycle.Discard(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return s.lifecycleError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// lifecycleError maps the controller's error taxonomy onto HTTP statuses.
// Generation and delivery causes pass through verbatim so the form can show
// them to the user.
func (s *Server) lifecycleError(err error) error {
	var genErr *draft.GenerationError
	var delErr *draft.DeliveryError

	switch {
	case errors.Is(err, draft.ErrContactNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	case errors.Is(err, draft.ErrNoDraft):
		return echo.NewHTTPError(http.StatusNotFound, "no draft in session")
	case errors.Is(err, draft.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, draft.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, draft.ErrUnknownTone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &genErr):
		return echo.NewHTTPError(http.StatusBadGateway, genErr.Cause)
	case errors.As(err, &delErr):
		return echo.NewHTTPError(http.StatusBadGateway, delErr.Cause)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
