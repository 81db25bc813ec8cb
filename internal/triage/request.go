package triage

import (
	"strings"

	"github.com/sumire/triage/internal/domain"
)

// BuildPredictionRequest validates the draft and returns the prediction payload.
// Summary and description are trimmed and must be non-empty; project is passed
// through verbatim.
func BuildPredictionRequest(draft domain.IssueDraft) (domain.PredictionRequest, error) {
	summary := strings.TrimSpace(draft.Summary)
	if summary == "" {
		return domain.PredictionRequest{}, emptyField(domain.FieldSummary)
	}

	description := strings.TrimSpace(draft.Description)
	if description == "" {
		return domain.PredictionRequest{}, emptyField(domain.FieldDescription)
	}

	return domain.PredictionRequest{
		Project:     draft.Project,
		Summary:     summary,
		Description: description,
	}, nil
}

// BuildCreationRequest combines the draft with a prediction into the creation
// payload. A prediction without ranked assignees yields a nil Assignee.
func BuildCreationRequest(draft domain.IssueDraft, prediction *domain.PredictionResult) (domain.CreationRequest, error) {
	if prediction == nil {
		return domain.CreationRequest{}, &domain.ValidationError{
			Kind:    domain.ValidationNoPrediction,
			Message: "no prediction available",
		}
	}

	req := domain.CreationRequest{
		Project:     draft.Project,
		Summary:     draft.Summary,
		Description: draft.Description,
		Category:    prediction.Category,
		Severity:    prediction.Severity,
	}
	if assignee, ok := prediction.PrimaryAssignee(); ok {
		req.Assignee = &assignee
	}
	return req, nil
}

func emptyField(field domain.DraftField) error {
	return &domain.ValidationError{
		Kind:    domain.ValidationEmptyField,
		Field:   string(field),
		Message: "must not be empty",
	}
}
