package domain

// SimilarCase is a historical issue the model considers close to the input.
type SimilarCase struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
}

// PredictionResult is the triage produced by the prediction service.
// Category and severity confidences come from separate classifiers and are
// not expected to sum to 1.
type PredictionResult struct {
	Category           string        `json:"category"`
	CategoryConfidence float64       `json:"category_confidence"`
	Severity           string        `json:"severity"`
	SeverityConfidence float64       `json:"severity_confidence"`
	AssigneeRanked     []string      `json:"assignee_ranked"`
	JiraSuggested      bool          `json:"jira_suggested"`
	ModelVersion       string        `json:"model_version"`
	SimilarCases       []SimilarCase `json:"similar_cases,omitempty"`
}

// PrimaryAssignee returns the top ranked assignee, if any.
func (p PredictionResult) PrimaryAssignee() (string, bool) {
	if len(p.AssigneeRanked) == 0 {
		return "", false
	}
	return p.AssigneeRanked[0], true
}

// Alternates returns the ranked assignees after the first, in order.
func (p PredictionResult) Alternates() []string {
	if len(p.AssigneeRanked) < 2 {
		return nil
	}
	out := make([]string, len(p.AssigneeRanked)-1)
	copy(out, p.AssigneeRanked[1:])
	return out
}

// CreationResult is the outcome reported by the issue creation service.
type CreationResult struct {
	Success  bool   `json:"success"`
	IssueKey string `json:"issue_key,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CreationSucceeded returns a successful CreationResult.
func CreationSucceeded(key string) *CreationResult {
	return &CreationResult{Success: true, IssueKey: key}
}

// CreationFailed returns a failed CreationResult.
func CreationFailed(msg string) *CreationResult {
	return &CreationResult{Success: false, Error: msg}
}
