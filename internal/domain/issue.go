package domain

// DraftField names an editable field of an IssueDraft.
type DraftField string

const (
	FieldProject     DraftField = "project"
	FieldSummary     DraftField = "summary"
	FieldDescription DraftField = "description"
)

// Valid reports whether f names a known draft field.
func (f DraftField) Valid() bool {
	switch f {
	case FieldProject, FieldSummary, FieldDescription:
		return true
	}
	return false
}

// IssueDraft holds the user-entered issue fields of a session.
type IssueDraft struct {
	Project     string `json:"project"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// WithField returns a copy of the draft with one field replaced.
func (d IssueDraft) WithField(field DraftField, value string) IssueDraft {
	switch field {
	case FieldProject:
		d.Project = value
	case FieldSummary:
		d.Summary = value
	case FieldDescription:
		d.Description = value
	}
	return d
}

// PredictionRequest is the payload sent to the prediction service.
type PredictionRequest struct {
	Project     string `json:"project"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// CreationRequest is the payload sent to the issue creation service.
// Assignee is nil when the prediction ranked no assignees.
type CreationRequest struct {
	Project     string  `json:"project"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Severity    string  `json:"severity"`
	Assignee    *string `json:"assignee,omitempty"`
}

// AssigneeOrEmpty returns the assignee or "" when none was ranked.
func (r CreationRequest) AssigneeOrEmpty() string {
	if r.Assignee == nil {
		return ""
	}
	return *r.Assignee
}
