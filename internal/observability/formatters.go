// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/repo-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printList appends up to limit items as bullet lines, with a trailing
// "... and N more" marker when the list is longer
func printList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		item := items[i]
		if len(item) > 50 {
			item = item[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintRequirementProfile outputs a human-readable summary of the analyzed requirements.
func (p *Printer) PrintRequirementProfile(profile *types.RequirementProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Project:  %s\n", profile.ProjectType))
	sb.WriteString("\n")

	if len(profile.Deliverables) > 0 {
		sb.WriteString("Deliverables:\n")
		printList(&sb, profile.Deliverables, maxItemsToShow)
		sb.WriteString("\n")
	}

	if len(profile.TechnicalRequirements) > 0 {
		sb.WriteString("Technical Requirements:\n")
		printList(&sb, profile.TechnicalRequirements, 3)
		sb.WriteString("\n")
	}

	if len(profile.Integrations) > 0 {
		sb.WriteString("Integrations:\n")
		printList(&sb, profile.Integrations, 3)
	}

	p.printBox("REQUIREMENT PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClarifyingQuestions outputs the questions the analysis surfaced for the user.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintClarifyingQuestions(questions []types.ClarifyingQuestion) {
	if len(questions) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO CLARIFYING QUESTIONS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The analysis surfaced %d questions:\n\n", len(questions)))

	for i, question := range questions {
		prompt := question.Prompt
		if len(prompt) > 45 {
			prompt = prompt[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n", question.ID, prompt))
		options := strings.Join(question.Options, " / ")
		if len(options) > 45 {
			options = options[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", options))
		if i < len(questions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CLARIFYING QUESTIONS", sb.String())
}

// PrintRankedRepositories outputs the top N candidates with coverage scores.
func (p *Printer) PrintRankedRepositories(ranked *types.RankedRepositories) {
	if ranked == nil || len(ranked.Repositories) == 0 {
		p.printBox("RANKED REPOSITORIES", "No repositories matched the requirements.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total repositories ranked: %d\n\n", len(ranked.Repositories)))

	count := min(len(ranked.Repositories), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := ranked.Repositories[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, entry.Repository.FullName))
		sb.WriteString(fmt.Sprintf("    Coverage: %d%%  ★ %d\n", entry.Coverage.CoveragePercentage, entry.Repository.Stars))
		if len(entry.Coverage.Covers) > 0 {
			covers := strings.Join(entry.Coverage.Covers, ", ")
			if len(covers) > 40 {
				covers = covers[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Covers: %s\n", covers))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(ranked.Repositories) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more repositories", len(ranked.Repositories)-maxItemsToShow))
	}

	p.printBox("TOP RANKED REPOSITORIES", sb.String())
}

// PrintRepositoryDetail outputs the deep fit report for a single repository.
func (p *Printer) PrintRepositoryDetail(detail *types.RepositoryDetail) {
	if detail == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Repository: %s\n", detail.Repository.FullName))
	sb.WriteString(fmt.Sprintf("Health:     %s (pushed %d days ago)\n", detail.Health, detail.DaysSincePush))
	sb.WriteString(fmt.Sprintf("★ %d   Forks: %d   Open issues: %d   Contributors: %d\n",
		detail.Repository.Stars, detail.Forks, detail.OpenIssues, detail.Contributors))
	sb.WriteString("\n")

	if detail.Fit.TimeSavedEstimate != "" {
		estimate := detail.Fit.TimeSavedEstimate
		if len(estimate) > 40 {
			estimate = estimate[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Time saved: %s\n\n", estimate))
	}

	if len(detail.Fit.Covers) > 0 {
		sb.WriteString("Covers:\n")
		printList(&sb, detail.Fit.Covers, 3)
		sb.WriteString("\n")
	}

	if len(detail.Fit.Gaps) > 0 {
		sb.WriteString("Gaps:\n")
		printList(&sb, detail.Fit.Gaps, 3)
		sb.WriteString("\n")
	}

	if len(detail.Fit.Risks) > 0 {
		sb.WriteString("Risks:\n")
		printList(&sb, detail.Fit.Risks, 3)
	}

	p.printBox("REPOSITORY FIT REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
