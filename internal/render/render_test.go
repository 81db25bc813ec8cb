package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/triage"
)

func init() {
	color.NoColor = true
}

func predictedView() triage.View {
	s := triage.NewWorkflowState("DEM")
	s.Draft.Summary = "Login fails"
	s.Draft.Description = "Cannot log in"
	s.Phase = domain.PhasePredicted
	s.Prediction = &domain.PredictionResult{
		Category:           "Bug",
		CategoryConfidence: 0.92,
		Severity:           "High",
		SeverityConfidence: 0.5,
		AssigneeRanked:     []string{"john.doe@x.com", "jane@x.com"},
		JiraSuggested:      true,
		ModelVersion:       "v3",
		SimilarCases:       []domain.SimilarCase{{ID: "DEM-12", Similarity: 0.77}},
	}
	return triage.Project(s)
}

func TestView_Results(t *testing.T) {
	var buf bytes.Buffer
	View(&buf, domain.IssueDraft{Project: "DEM", Summary: "Login fails"}, predictedView())
	out := buf.String()

	assert.Contains(t, out, "Login fails  [DEM]")
	assert.Contains(t, out, "Bug")
	assert.Contains(t, out, "92.0%")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "(JD) john.doe@x.com")
	assert.Contains(t, out, "(J) jane@x.com")
	assert.Contains(t, out, "Similar: DEM-12 (77%)")
	assert.Contains(t, out, "Model: v3")
	assert.Contains(t, out, "Issue creation suggested")
}

func TestView_EmptyAndError(t *testing.T) {
	var buf bytes.Buffer
	View(&buf, domain.IssueDraft{}, triage.Project(triage.NewWorkflowState("DEM")))
	assert.Contains(t, buf.String(), "No prediction yet.")

	msg := triage.MsgPredictionFailed
	s := triage.NewWorkflowState("DEM")
	s.Phase = domain.PhasePredictionFailed
	s.PredictionError = &msg

	buf.Reset()
	View(&buf, domain.IssueDraft{}, triage.Project(s))
	assert.Contains(t, buf.String(), msg)
}

func TestView_Creation(t *testing.T) {
	v := predictedView()

	var buf bytes.Buffer
	v.Creation = &triage.CreationView{Success: true, IssueKey: "DEM-42"}
	View(&buf, domain.IssueDraft{}, v)
	assert.Contains(t, buf.String(), "Issue created: DEM-42")
	assert.NotContains(t, buf.String(), "Issue creation suggested")

	buf.Reset()
	v.Creation = &triage.CreationView{Error: "Jira down"}
	View(&buf, domain.IssueDraft{}, v)
	assert.Contains(t, buf.String(), "Issue creation failed: Jira down")
}

func TestBar(t *testing.T) {
	tests := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{50, 10},
		{92, 18},
		{100, 20},
		{150, 20},
		{-5, 0},
	}

	for _, tt := range tests {
		bar := Bar(tt.percent)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "percent %v", tt.percent)
		assert.Equal(t, barWidth, len([]rune(bar)))
	}
}
