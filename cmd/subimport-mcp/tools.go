package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createImportStatusTool returns the import_status tool definition
func createImportStatusTool() mcp.Tool {
	return mcp.NewTool("import_status",
		mcp.WithDescription("Show the status and progress of the current subscriber import"),
	)
}

// createImportLogsTool returns the import_logs tool definition
func createImportLogsTool() mcp.Tool {
	return mcp.NewTool("import_logs",
		mcp.WithDescription("Fetch the log output of the current subscriber import"),
		mcp.WithNumber("tail_lines",
			mcp.Description("Only return the last N lines (default: all)"),
		),
	)
}

// createStartImportTool returns the start_import tool definition
func createStartImportTool() mcp.Tool {
	return mcp.NewTool("start_import",
		mcp.WithDescription("Upload a CSV or ZIP file of subscribers and start an import"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to a .csv file (zipped automatically) or a .zip holding one CSV"),
		),
		mcp.WithString("lists",
			mcp.Required(),
			mcp.Description("Comma separated list ids or list names"),
		),
		mcp.WithString("delimiter",
			mcp.Description("Single character CSV delimiter (default: \",\")"),
		),
		mcp.WithBoolean("override_status",
			mcp.Description("Overwrite the status of subscribers that already exist"),
		),
	)
}

// createStopImportTool returns the stop_import tool definition
func createStopImportTool() mcp.Tool {
	return mcp.NewTool("stop_import",
		mcp.WithDescription("Ask the server to stop the running import"),
	)
}

// createClearImportTool returns the clear_import tool definition
func createClearImportTool() mcp.Tool {
	return mcp.NewTool("clear_import",
		mcp.WithDescription("Acknowledge a finished or failed import so a new one can start"),
	)
}

// createListListsTool returns the list_lists tool definition
func createListListsTool() mcp.Tool {
	return mcp.NewTool("list_lists",
		mcp.WithDescription("List the subscriber lists an import can target"),
	)
}
