// Package render prints triage views to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/triage"
)

const barWidth = 20

var (
	heading = color.New(color.Bold)
	dim     = color.New(color.FgHiBlack)
	failure = color.New(color.FgRed, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
)

// palette maps view colors onto the closest terminal attributes.
var palette = map[string]*color.Color{
	triage.ColorRed.Name:     color.New(color.FgRed, color.Bold),
	triage.ColorOrange.Name:  color.New(color.FgYellow, color.Bold),
	triage.ColorBlue.Name:    color.New(color.FgBlue, color.Bold),
	triage.ColorGreen.Name:   color.New(color.FgGreen, color.Bold),
	triage.ColorNeutral.Name: color.New(color.FgHiBlack, color.Bold),
}

func colorFor(c triage.Color) *color.Color {
	if tc, ok := palette[c.Name]; ok {
		return tc
	}
	return palette[triage.ColorNeutral.Name]
}

// View writes a human readable rendering of v for the given draft.
func View(w io.Writer, draft domain.IssueDraft, v triage.View) {
	heading.Fprintf(w, "%s", draft.Summary)
	dim.Fprintf(w, "  [%s]\n", draft.Project)

	switch v.Panel {
	case triage.PanelEmpty:
		if v.Loading {
			dim.Fprintln(w, "Analyzing issue...")
		} else {
			dim.Fprintln(w, "No prediction yet.")
		}
	case triage.PanelError:
		failure.Fprintln(w, v.Error)
	case triage.PanelResults:
		results(w, v)
	}

	if v.Creation != nil {
		creation(w, v.Creation)
	}
}

func results(w io.Writer, v triage.View) {
	if v.Category != nil {
		badge(w, "Category", v.Category)
	}
	if v.Severity != nil {
		badge(w, "Severity", v.Severity)
	}

	if v.Primary != nil {
		fmt.Fprintf(w, "%-10s ", "Assignee")
		heading.Fprintf(w, "(%s)", v.Primary.Initials)
		fmt.Fprintf(w, " %s\n", v.Primary.Identifier)
	}
	for _, a := range v.Alternates {
		fmt.Fprintf(w, "%-10s ", "")
		dim.Fprintf(w, "(%s) %s\n", a.Initials, a.Identifier)
	}

	if len(v.SimilarCases) > 0 {
		ids := make([]string, 0, len(v.SimilarCases))
		for _, sc := range v.SimilarCases {
			ids = append(ids, fmt.Sprintf("%s (%.0f%%)", sc.ID, triage.ConfidencePercent(sc.Similarity)))
		}
		dim.Fprintf(w, "Similar: %s\n", strings.Join(ids, ", "))
	}
	if v.ModelVersion != "" {
		dim.Fprintf(w, "Model: %s\n", v.ModelVersion)
	}
	if v.ShowCreationPanel && v.Creation == nil && !v.CreatingIssue {
		dim.Fprintln(w, "Issue creation suggested (use --create).")
	}
	if v.CreatingIssue {
		dim.Fprintln(w, "Creating issue...")
	}
}

func badge(w io.Writer, name string, b *triage.Badge) {
	fmt.Fprintf(w, "%-10s ", name)
	colorFor(b.Color).Fprintf(w, "%-12s", b.Label)
	fmt.Fprintf(w, " %s %s\n", Bar(b.Percent), b.ConfidenceText)
}

func creation(w io.Writer, c *triage.CreationView) {
	if c.Success {
		success.Fprintf(w, "Issue created: %s\n", c.IssueKey)
		return
	}
	failure.Fprintf(w, "Issue creation failed: %s\n", c.Error)
}

// Bar draws a fixed width confidence bar for a percentage in [0,100].
func Bar(percent float64) string {
	filled := int(percent/100*barWidth + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
