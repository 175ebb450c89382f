package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/subimport/internal/models"
)

// formatState formats the job snapshot as markdown
func formatState(state models.JobState, polling bool) string {
	var sb strings.Builder
	sb.WriteString("## Subscriber Import\n\n")

	if state.IsIdle() {
		sb.WriteString("No import is running. Use start_import to begin one.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**Name:** %s\n", state.Name))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", state.Status))
	sb.WriteString(fmt.Sprintf("**Progress:** %d%% (%d of %d records)\n", state.Progress(), state.Imported, state.Total))

	switch {
	case state.Status.IsTerminal():
		sb.WriteString("\nThe import is over. Use clear_import before starting another one.\n")
	case polling:
		sb.WriteString("\nStatus is refreshed every second.\n")
	}
	return sb.String()
}

// formatLogs formats the log buffer, optionally keeping only the last lines
func formatLogs(text string, tailLines int) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return "No log output yet.\n"
	}

	if tailLines > 0 {
		lines := strings.Split(text, "\n")
		if len(lines) > tailLines {
			lines = lines[len(lines)-tailLines:]
		}
		text = strings.Join(lines, "\n")
	}
	return "```\n" + text + "\n```\n"
}

// formatLists formats subscriber lists as a markdown table
func formatLists(lists []models.List) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Lists (%d)\n\n", len(lists)))

	if len(lists) == 0 {
		sb.WriteString("No lists found.\n")
		return sb.String()
	}

	sb.WriteString("| ID | Name | Type | Opt-in | Subscribers |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, l := range lists {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d |\n", l.ID, l.Name, l.Type, l.Optin, l.SubscriberCount))
	}
	return sb.String()
}
