package triage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/triage/internal/domain"
)

func TestProject_SubmitPredictionEnabled(t *testing.T) {
	tests := []struct {
		name        string
		phase       domain.Phase
		summary     string
		description string
		want        bool
	}{
		{"idle with fields", domain.PhaseIdle, "s", "d", true},
		{"idle blank summary", domain.PhaseIdle, " ", "d", false},
		{"idle blank description", domain.PhaseIdle, "s", "\n", false},
		{"predicting with fields", domain.PhasePredicting, "s", "d", false},
		{"predicted with fields", domain.PhasePredicted, "s", "d", true},
		{"failed with fields", domain.PhasePredictionFailed, "s", "d", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filledState(tt.phase)
			s.Draft.Summary = tt.summary
			s.Draft.Description = tt.description
			assert.Equal(t, tt.want, Project(s).SubmitPredictionEnabled)
		})
	}
}

func TestProject_SubmitCreationEnabled(t *testing.T) {
	assert.False(t, Project(filledState(domain.PhaseCreatingIssue)).SubmitCreationEnabled)
	assert.True(t, Project(filledState(domain.PhasePredicted)).SubmitCreationEnabled)

	v := Project(filledState(domain.PhaseIssueCreated))
	assert.True(t, v.SubmitCreationEnabled)
	require.NotNil(t, v.Creation)
	assert.Equal(t, "DEM-1", v.Creation.IssueKey)
}

func TestProject_PanelByPhase(t *testing.T) {
	tests := []struct {
		phase domain.Phase
		want  Panel
	}{
		{domain.PhaseIdle, PanelEmpty},
		{domain.PhasePredicting, PanelEmpty},
		{domain.PhasePredicted, PanelResults},
		{domain.PhasePredictionFailed, PanelError},
		{domain.PhaseCreatingIssue, PanelResults},
		{domain.PhaseIssueCreated, PanelResults},
		{domain.PhaseIssueCreationFailed, PanelResults},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			assert.Equal(t, tt.want, Project(filledState(tt.phase)).Panel)
		})
	}
}

func TestProject_Alternates(t *testing.T) {
	s := filledState(domain.PhasePredicted)
	s.Prediction = &domain.PredictionResult{AssigneeRanked: []string{"a@x.com", "b@x.com", "c@x.com"}}

	v := Project(s)
	require.NotNil(t, v.Primary)
	assert.Equal(t, "a@x.com", v.Primary.Identifier)
	assert.Equal(t, []AssigneeView{
		{Identifier: "b@x.com", Initials: "B"},
		{Identifier: "c@x.com", Initials: "C"},
	}, v.Alternates)
}

func TestProject_EmptyRanking(t *testing.T) {
	s := filledState(domain.PhasePredicted)
	s.Prediction = &domain.PredictionResult{Category: "Bug"}

	v := Project(s)
	require.NotNil(t, v.Primary)
	assert.Equal(t, UnassignedPlaceholder, v.Primary.Identifier)
	assert.Equal(t, PlaceholderInitials, v.Primary.Initials)
	assert.Empty(t, v.Alternates)
	assert.False(t, v.ShowCreationPanel)
}

func TestProject_UnknownLabelsDegradeToNeutral(t *testing.T) {
	s := filledState(domain.PhasePredicted)
	s.Prediction = &domain.PredictionResult{Category: "Spike", Severity: "Blocker", CategoryConfidence: 0.5}

	v := Project(s)
	assert.Equal(t, "Spike", v.Category.Label)
	assert.Equal(t, ColorNeutral, v.Category.Color)
	assert.Equal(t, "Blocker", v.Severity.Label)
	assert.Equal(t, ColorNeutral, v.Severity.Color)
}

func TestConfidencePercent(t *testing.T) {
	assert.InDelta(t, 92.0, ConfidencePercent(0.92), 1e-9)
	assert.Equal(t, 0.0, ConfidencePercent(-0.2))
	assert.Equal(t, 100.0, ConfidencePercent(1.7))
	assert.Equal(t, 0.0, ConfidencePercent(math.NaN()))
}

func TestProject_ErrorPanelHasNoResults(t *testing.T) {
	v := Project(filledState(domain.PhasePredictionFailed))
	assert.Equal(t, PanelError, v.Panel)
	assert.Equal(t, "boom", v.Error)
	assert.Nil(t, v.Category)
	assert.Nil(t, v.Severity)
	assert.Nil(t, v.Primary)
	assert.False(t, v.ShowCreationPanel)
}
