package triage

import (
	"fmt"
	"math"
	"strings"

	"github.com/sumire/triage/internal/domain"
)

// Panel identifies which result panel is visible.
type Panel string

const (
	PanelEmpty   Panel = "empty"
	PanelError   Panel = "error"
	PanelResults Panel = "results"
)

// UnassignedPlaceholder is displayed when no assignee was ranked.
const UnassignedPlaceholder = "unassigned"

// Badge is a labelled, colored confidence indicator.
type Badge struct {
	Label          string  `json:"label"`
	Color          Color   `json:"color"`
	Percent        float64 `json:"percent"`
	ConfidenceText string  `json:"confidence_text"`
}

// AssigneeView is an assignee identifier with its avatar initials.
type AssigneeView struct {
	Identifier string `json:"identifier"`
	Initials   string `json:"initials"`
}

// CreationView is the outcome of the last issue creation.
type CreationView struct {
	Success  bool   `json:"success"`
	IssueKey string `json:"issue_key,omitempty"`
	Error    string `json:"error,omitempty"`
}

// View is the full set of display facts derived from a WorkflowState.
type View struct {
	Phase                   domain.Phase `json:"phase"`
	Panel                   Panel        `json:"panel"`
	SubmitPredictionEnabled bool         `json:"submit_prediction_enabled"`
	SubmitCreationEnabled   bool         `json:"submit_creation_enabled"`
	Loading                 bool         `json:"loading"`
	CreatingIssue           bool         `json:"creating_issue"`

	Error string `json:"error,omitempty"`

	Category          *Badge               `json:"category,omitempty"`
	Severity          *Badge               `json:"severity,omitempty"`
	Primary           *AssigneeView        `json:"primary_assignee,omitempty"`
	Alternates        []AssigneeView       `json:"alternate_assignees"`
	ShowCreationPanel bool                 `json:"show_creation_panel"`
	Creation          *CreationView        `json:"creation,omitempty"`
	ModelVersion      string               `json:"model_version,omitempty"`
	SimilarCases      []domain.SimilarCase `json:"similar_cases,omitempty"`
}

// Project derives the View for s. It has no side effects.
func Project(s WorkflowState) View {
	fieldsFilled := strings.TrimSpace(s.Draft.Summary) != "" &&
		strings.TrimSpace(s.Draft.Description) != ""

	v := View{
		Phase:                   s.Phase,
		Panel:                   panelFor(s.Phase),
		SubmitPredictionEnabled: s.Phase != domain.PhasePredicting && fieldsFilled,
		SubmitCreationEnabled:   s.Phase != domain.PhaseCreatingIssue,
		Loading:                 s.Phase == domain.PhasePredicting,
		CreatingIssue:           s.Phase == domain.PhaseCreatingIssue,
		Alternates:              []AssigneeView{},
	}

	if v.Panel == PanelError && s.PredictionError != nil {
		v.Error = *s.PredictionError
	}

	if p := s.Prediction; p != nil && v.Panel == PanelResults {
		v.Category = newBadge(p.Category, p.CategoryConfidence, CategoryColor(p.Category))
		v.Severity = newBadge(p.Severity, p.SeverityConfidence, SeverityColor(p.Severity))
		v.Primary = primaryAssignee(p)
		for _, a := range p.Alternates() {
			v.Alternates = append(v.Alternates, AssigneeView{Identifier: a, Initials: InitialsOf(a)})
		}
		v.ShowCreationPanel = p.JiraSuggested
		v.ModelVersion = p.ModelVersion
		v.SimilarCases = p.SimilarCases
	}

	if c := s.Creation; c != nil {
		v.Creation = &CreationView{Success: c.Success, IssueKey: c.IssueKey, Error: c.Error}
	}

	return v
}

// ConfidencePercent converts a [0,1] confidence to a display percentage
// clamped to [0,100].
func ConfidencePercent(confidence float64) float64 {
	pct := confidence * 100
	switch {
	case math.IsNaN(pct), pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func panelFor(phase domain.Phase) Panel {
	switch {
	case phase == domain.PhasePredictionFailed:
		return PanelError
	case phase.HasPrediction():
		return PanelResults
	default:
		return PanelEmpty
	}
}

func newBadge(label string, confidence float64, color Color) *Badge {
	pct := ConfidencePercent(confidence)
	return &Badge{
		Label:          label,
		Color:          color,
		Percent:        pct,
		ConfidenceText: fmt.Sprintf("%.1f%%", pct),
	}
}

func primaryAssignee(p *domain.PredictionResult) *AssigneeView {
	id, ok := p.PrimaryAssignee()
	if !ok {
		return &AssigneeView{Identifier: UnassignedPlaceholder, Initials: PlaceholderInitials}
	}
	return &AssigneeView{Identifier: id, Initials: InitialsOf(id)}
}
