package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/jobs/importer"
	"github.com/ternarybob/subimport/internal/models"
	"github.com/ternarybob/subimport/internal/services/payload"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	result := textResult(fmt.Sprintf(format, args...))
	result.IsError = true
	return result
}

// handleImportStatus implements the import_status tool
func handleImportStatus(controller *importer.Controller, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state, err := controller.Refresh(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Status refresh failed, returning last known state")
			return textResult(formatState(state, controller.Polling()) +
				fmt.Sprintf("\n_Status refresh failed: %v_\n", err)), nil
		}
		return textResult(formatState(state, controller.Polling())), nil
	}
}

// handleImportLogs implements the import_logs tool
func handleImportLogs(controller *importer.Controller, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tailLines := request.GetInt("tail_lines", 0)

		text, err := controller.FetchLogs(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Log fetch failed, returning buffered logs")
			return textResult(formatLogs(controller.Logs(), tailLines) +
				fmt.Sprintf("\n_Log fetch failed: %v_\n", err)), nil
		}
		return textResult(formatLogs(text, tailLines)), nil
	}
}

// handleStartImport implements the start_import tool
func handleStartImport(controller *importer.Controller, api interfaces.ImportAPI, defaultDelimiter string, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil || filePath == "" {
			return errorResult("Error: file_path parameter is required"), nil
		}
		listRefs, err := request.RequireString("lists")
		if err != nil || listRefs == "" {
			return errorResult("Error: lists parameter is required"), nil
		}
		delimiter := request.GetString("delimiter", defaultDelimiter)
		overrideStatus := request.GetBool("override_status", false)

		file, err := payload.Load(filePath)
		if err != nil {
			return errorResult("Error: %v", err), nil
		}

		lists, err := importer.ResolveListIDs(ctx, api, strings.Split(listRefs, ","))
		if err != nil {
			return errorResult("Error: %v", err), nil
		}

		req, err := models.NewUploadRequest(lists, overrideStatus, delimiter, file)
		if err != nil {
			return errorResult("Invalid import: %v", err), nil
		}

		if err := controller.Submit(ctx, req); err != nil {
			logger.Error().Err(err).Str("file", filePath).Msg("Import submission failed")
			return errorResult("Import not started: %v", err), nil
		}

		return textResult(formatState(controller.State(), controller.Polling())), nil
	}
}

// handleStopImport implements the stop_import tool
func handleStopImport(controller *importer.Controller, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := controller.RequestStop(ctx); err != nil {
			return errorResult("Stop failed: %v", err), nil
		}
		return textResult("Stop requested. The status changes once the server confirms it; check import_status.\n"), nil
	}
}

// handleClearImport implements the clear_import tool
func handleClearImport(controller *importer.Controller, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := controller.RequestDone(ctx); err != nil {
			return errorResult("Clear failed: %v", err), nil
		}
		return textResult(formatState(controller.State(), controller.Polling())), nil
	}
}

// handleListLists implements the list_lists tool
func handleListLists(api interfaces.ImportAPI, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lists, err := api.GetLists(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to fetch lists")
			return errorResult("Failed to fetch lists: %v", err), nil
		}
		return textResult(formatLists(lists)), nil
	}
}
