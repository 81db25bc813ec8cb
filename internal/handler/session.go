package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/logger"
	"github.com/sumire/triage/internal/service"
	"github.com/sumire/triage/internal/triage"
)

// SessionHandler exposes triage sessions over HTTP.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSessionResponse is returned when a session starts.
type CreateSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	StateResponse
}

// StateResponse is the draft and the derived view of a session.
type StateResponse struct {
	Draft domain.IssueDraft `json:"draft"`
	View  triage.View       `json:"view"`
}

// UpdateDraftRequest carries the draft fields to change. Absent fields are
// left untouched.
type UpdateDraftRequest struct {
	Project     *string `json:"project" validate:"omitempty,max=64"`
	Summary     *string `json:"summary" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=32768"`
}

// Create starts a new session.
func (h *SessionHandler) Create(c echo.Context) error {
	sess, token, err := h.sessions.Create(c.Request().Context())
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, CreateSessionResponse{
		Token:         token,
		ExpiresAt:     sess.ExpiresAt,
		StateResponse: stateOf(sess),
	})
}

// Get returns the current state of the session.
func (h *SessionHandler) Get(c echo.Context) error {
	sess, ok := GetSession(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	return JSON(c, http.StatusOK, stateOf(sess))
}

// UpdateDraft edits the draft fields present in the body.
func (h *SessionHandler) UpdateDraft(c echo.Context) error {
	sess, ok := GetSession(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req UpdateDraftRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	edits := []struct {
		field domain.DraftField
		value *string
	}{
		{domain.FieldProject, req.Project},
		{domain.FieldSummary, req.Summary},
		{domain.FieldDescription, req.Description},
	}
	for _, e := range edits {
		if e.value != nil {
			sess.Controller.EditField(e.field, *e.value)
		}
	}

	return JSON(c, http.StatusOK, stateOf(sess))
}

// SubmitPrediction starts a prediction. With ?wait=true it responds once the
// call has completed.
func (h *SessionHandler) SubmitPrediction(c echo.Context) error {
	sess, ok := GetSession(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	ctx := c.Request().Context()
	if !sess.Controller.SubmitPrediction(ctx) {
		state := sess.Controller.State()
		reason := inFlightReason(state)
		if reason == nil {
			_, reason = triage.BuildPredictionRequest(state.Draft)
		}
		return JSONConflict(c, "Prediction cannot be submitted now", reason, stateOf(sess))
	}

	return h.respondAfterDispatch(c, sess)
}

// SubmitCreation starts issue creation from the current prediction. With
// ?wait=true it responds once the call has completed.
func (h *SessionHandler) SubmitCreation(c echo.Context) error {
	sess, ok := GetSession(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	ctx := c.Request().Context()
	if !sess.Controller.SubmitCreation(ctx) {
		state := sess.Controller.State()
		reason := inFlightReason(state)
		if reason == nil {
			_, reason = triage.BuildCreationRequest(state.Draft, state.Prediction)
		}
		return JSONConflict(c, "Issue creation cannot be submitted now", reason, stateOf(sess))
	}

	return h.respondAfterDispatch(c, sess)
}

// Delete ends the session.
func (h *SessionHandler) Delete(c echo.Context) error {
	sess, ok := GetSession(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.sessions.Delete(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) respondAfterDispatch(c echo.Context, sess *service.Session) error {
	if c.QueryParam("wait") != "true" {
		return JSON(c, http.StatusAccepted, stateOf(sess))
	}

	ctx := c.Request().Context()
	if err := sess.Controller.Wait(ctx); err != nil {
		logger.Warn(ctx, "stopped waiting for remote call", "error", err)
		return JSON(c, http.StatusAccepted, stateOf(sess))
	}
	return JSON(c, http.StatusOK, stateOf(sess))
}

func stateOf(sess *service.Session) StateResponse {
	state := sess.Controller.State()
	return StateResponse{Draft: state.Draft, View: triage.Project(state)}
}

func inFlightReason(state triage.WorkflowState) error {
	if !state.Phase.InFlight() {
		return nil
	}
	return &domain.ValidationError{
		Kind:    domain.ValidationInvalidField,
		Field:   "phase",
		Message: fmt.Sprintf("a request is already in flight (%s)", state.Phase),
	}
}
