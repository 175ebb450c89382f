package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/jobs/importer"
	"github.com/ternarybob/subimport/internal/models"
)

// stubAPI reports a fixed status and records uploads.
type stubAPI struct {
	mu     sync.Mutex
	status models.JobState
	params models.ImportParams
	file   *models.UploadFile
}

func (s *stubAPI) StartImport(ctx context.Context, params models.ImportParams, file *models.UploadFile) (*models.JobState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params
	s.file = file
	return &models.JobState{Status: models.JobStatusImporting, Name: file.Name}, nil
}

func (s *stubAPI) GetStatus(ctx context.Context) (*models.JobState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.status
	return &state, nil
}

func (s *stubAPI) GetLogs(ctx context.Context) (string, error) {
	return "line 1\nline 2\n", nil
}

func (s *stubAPI) StopImport(ctx context.Context) error {
	return nil
}

func (s *stubAPI) GetLists(ctx context.Context) ([]models.List, error) {
	return []models.List{{ID: 7, Name: "Newsletter"}}, nil
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func newHandlerController(t *testing.T, api *stubAPI) *importer.Controller {
	c := importer.NewController(api, nil, arbor.NewNoOpLogger())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestStartImportTool(t *testing.T) {
	api := &stubAPI{status: models.JobState{Status: models.JobStatusImporting, Name: "subs.zip", Total: 10}}
	c := newHandlerController(t, api)
	logger := arbor.NewNoOpLogger()

	path := filepath.Join(t.TempDir(), "subs.csv")
	require.NoError(t, os.WriteFile(path, []byte("email,name\na@b.c,A\n"), 0644))

	text, isErr := callTool(t, handleStartImport(c, api, ",", logger), map[string]interface{}{
		"file_path":       path,
		"lists":           "Newsletter, 3",
		"delimiter":       ";",
		"override_status": true,
	})
	assert.False(t, isErr, text)
	assert.Contains(t, text, "**Status:** importing")

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []int{7, 3}, api.params.Lists)
	assert.Equal(t, ";", api.params.Delimiter)
	assert.True(t, api.params.OverrideStatus)
	assert.Equal(t, "subs.zip", api.file.Name)
}

func TestStartImportToolErrors(t *testing.T) {
	api := &stubAPI{}
	c := newHandlerController(t, api)
	logger := arbor.NewNoOpLogger()

	text, isErr := callTool(t, handleStartImport(c, api, ",", logger), map[string]interface{}{"lists": "1"})
	assert.True(t, isErr)
	assert.Contains(t, text, "file_path parameter is required")

	text, isErr = callTool(t, handleStartImport(c, api, ",", logger), map[string]interface{}{
		"file_path": filepath.Join(t.TempDir(), "missing.csv"),
		"lists":     "1",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "failed to stat")
}

func TestStatusLogsAndListsTools(t *testing.T) {
	api := &stubAPI{status: models.JobState{Status: models.JobStatusFailed, Name: "subs.zip", Imported: 1, Total: 4}}
	c := newHandlerController(t, api)
	logger := arbor.NewNoOpLogger()

	text, _ := callTool(t, handleImportStatus(c, logger), nil)
	assert.Contains(t, text, "**Status:** failed")
	assert.Contains(t, text, "25%")

	text, _ = callTool(t, handleImportLogs(c, logger), map[string]interface{}{"tail_lines": 1})
	assert.Equal(t, "```\nline 2\n```\n", text)

	text, _ = callTool(t, handleListLists(api, logger), nil)
	assert.Contains(t, text, "| 7 | Newsletter |")

	text, isErr := callTool(t, handleStopImport(c, logger), nil)
	assert.True(t, isErr, "a failed job cannot be stopped")
	assert.Contains(t, text, "no import job is running")

	api.mu.Lock()
	api.status = models.IdleJobState()
	api.mu.Unlock()

	text, isErr = callTool(t, handleClearImport(c, logger), nil)
	assert.False(t, isErr, text)
	assert.Contains(t, text, "No import is running")
}
