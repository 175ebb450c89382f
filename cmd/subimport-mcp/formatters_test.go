package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/subimport/internal/models"
)

func TestFormatState(t *testing.T) {
	idle := formatState(models.IdleJobState(), false)
	assert.Contains(t, idle, "No import is running")

	running := formatState(models.JobState{Status: models.JobStatusImporting, Name: "subs.zip", Imported: 199, Total: 200}, true)
	assert.Contains(t, running, "**Status:** importing")
	assert.Contains(t, running, "99% (199 of 200 records)")
	assert.Contains(t, running, "refreshed every second")

	done := formatState(models.JobState{Status: models.JobStatusFinished, Name: "subs.zip", Imported: 180, Total: 200}, false)
	assert.Contains(t, done, "100%")
	assert.Contains(t, done, "clear_import")
}

func TestFormatLogs(t *testing.T) {
	assert.Equal(t, "No log output yet.\n", formatLogs("\n", 0))
	assert.Equal(t, "```\na\nb\nc\n```\n", formatLogs("a\nb\nc\n", 0))
	assert.Equal(t, "```\nb\nc\n```\n", formatLogs("a\nb\nc", 2))
	assert.Equal(t, "```\na\n```\n", formatLogs("a", 5))
}

func TestFormatLists(t *testing.T) {
	assert.Contains(t, formatLists(nil), "No lists found")

	out := formatLists([]models.List{{ID: 1, Name: "Default list", Type: "private", Optin: "single", SubscriberCount: 12}})
	assert.Contains(t, out, "## Lists (1)")
	assert.Contains(t, out, "| 1 | Default list | private | single | 12 |")
}
