// Package triage implements the issue triage workflow: draft validation, the
// prediction/creation state machine, and the projection of workflow state into
// display facts.
package triage

import (
	"github.com/sumire/triage/internal/domain"
)

// WorkflowState is the mutable state of one triage session.
//
// Prediction is set exactly when Phase.HasPrediction() and Creation exactly
// when Phase.HasCreation(). PredictionError is only set in
// PhasePredictionFailed.
type WorkflowState struct {
	Draft           domain.IssueDraft        `json:"draft"`
	Phase           domain.Phase             `json:"phase"`
	Prediction      *domain.PredictionResult `json:"prediction,omitempty"`
	PredictionError *string                  `json:"prediction_error,omitempty"`
	Creation        *domain.CreationResult   `json:"creation,omitempty"`
}

// NewWorkflowState returns an idle state with the project pre-filled.
func NewWorkflowState(defaultProject string) WorkflowState {
	return WorkflowState{
		Draft: domain.IssueDraft{Project: defaultProject},
		Phase: domain.PhaseIdle,
	}
}

// Event is an input to the workflow state machine.
type Event interface {
	event()
}

// EditField replaces one draft field.
type EditField struct {
	Field domain.DraftField
	Value string
}

// SubmitPrediction requests a prediction for the current draft.
type SubmitPrediction struct{}

// PredictionSucceeded completes an in-flight prediction.
type PredictionSucceeded struct {
	Result *domain.PredictionResult
}

// PredictionFailed completes an in-flight prediction with a failure.
type PredictionFailed struct {
	Message string
}

// SubmitCreation requests an issue for the current prediction.
type SubmitCreation struct{}

// CreationSucceeded completes an in-flight creation.
type CreationSucceeded struct {
	Result *domain.CreationResult
}

// CreationFailed completes an in-flight creation with a failure.
type CreationFailed struct {
	Message string
}

func (EditField) event()           {}
func (SubmitPrediction) event()    {}
func (PredictionSucceeded) event() {}
func (PredictionFailed) event()    {}
func (SubmitCreation) event()      {}
func (CreationSucceeded) event()   {}
func (CreationFailed) event()      {}

// Effect is a remote call the caller must dispatch after a transition.
type Effect interface {
	effect()
}

// PredictEffect asks for a call to the prediction service.
type PredictEffect struct {
	Request domain.PredictionRequest
}

// CreateEffect asks for a call to the issue creation service.
type CreateEffect struct {
	Request domain.CreationRequest
}

func (PredictEffect) effect() {}
func (CreateEffect) effect()  {}

// Transition applies ev to s. It returns the next state, the effect to
// dispatch (nil if none) and whether the event was accepted. Rejected events
// leave the state untouched.
func Transition(s WorkflowState, ev Event) (WorkflowState, Effect, bool) {
	switch ev := ev.(type) {
	case EditField:
		if !ev.Field.Valid() {
			return s, nil, false
		}
		// Edits never change the phase and never abort an in-flight call.
		s.Draft = s.Draft.WithField(ev.Field, ev.Value)
		return s, nil, true

	case SubmitPrediction:
		if s.Phase.InFlight() {
			return s, nil, false
		}
		req, err := BuildPredictionRequest(s.Draft)
		if err != nil {
			return s, nil, false
		}
		s.Phase = domain.PhasePredicting
		s.Prediction = nil
		s.PredictionError = nil
		s.Creation = nil
		return s, PredictEffect{Request: req}, true

	case PredictionSucceeded:
		if s.Phase != domain.PhasePredicting || ev.Result == nil {
			return s, nil, false
		}
		s.Phase = domain.PhasePredicted
		s.Prediction = ev.Result
		return s, nil, true

	case PredictionFailed:
		if s.Phase != domain.PhasePredicting {
			return s, nil, false
		}
		msg := ev.Message
		s.Phase = domain.PhasePredictionFailed
		s.PredictionError = &msg
		return s, nil, true

	case SubmitCreation:
		if !s.Phase.HasPrediction() || s.Phase == domain.PhaseCreatingIssue {
			return s, nil, false
		}
		req, err := BuildCreationRequest(s.Draft, s.Prediction)
		if err != nil {
			return s, nil, false
		}
		s.Phase = domain.PhaseCreatingIssue
		s.Creation = nil
		return s, CreateEffect{Request: req}, true

	case CreationSucceeded:
		if s.Phase != domain.PhaseCreatingIssue || ev.Result == nil {
			return s, nil, false
		}
		s.Phase = domain.PhaseIssueCreated
		s.Creation = ev.Result
		return s, nil, true

	case CreationFailed:
		if s.Phase != domain.PhaseCreatingIssue {
			return s, nil, false
		}
		s.Phase = domain.PhaseIssueCreationFailed
		s.Creation = domain.CreationFailed(ev.Message)
		return s, nil, true
	}

	return s, nil, false
}
