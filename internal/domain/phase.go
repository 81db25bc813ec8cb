package domain

// Phase represents the discrete state of a triage workflow.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhasePredicting          Phase = "predicting"
	PhasePredicted           Phase = "predicted"
	PhasePredictionFailed    Phase = "prediction_failed"
	PhaseCreatingIssue       Phase = "creating_issue"
	PhaseIssueCreated        Phase = "issue_created"
	PhaseIssueCreationFailed Phase = "issue_creation_failed"
)

// InFlight reports whether a remote call is outstanding in this phase.
func (p Phase) InFlight() bool {
	return p == PhasePredicting || p == PhaseCreatingIssue
}

// HasPrediction reports whether a prediction must be held in this phase.
func (p Phase) HasPrediction() bool {
	switch p {
	case PhasePredicted, PhaseCreatingIssue, PhaseIssueCreated, PhaseIssueCreationFailed:
		return true
	}
	return false
}

// HasCreation reports whether a creation result must be held in this phase.
func (p Phase) HasCreation() bool {
	return p == PhaseIssueCreated || p == PhaseIssueCreationFailed
}
