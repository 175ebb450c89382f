package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/subimport/internal/app"
	"github.com/ternarybob/subimport/internal/common"
)

func main() {
	defer common.RecoverWithCrashFile()

	// Load configuration
	var paths []string
	configPath := os.Getenv("SUBIMPORT_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("subimport.toml"); err == nil {
			paths = append(paths, "subimport.toml")
		}
	} else {
		paths = append(paths, configPath)
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Stdout carries the MCP protocol: log to file only, warnings and up
	config.Logging.Output = []string{"file"}
	config.Logging.Level = "warn"
	logger := common.InitLogger(config)
	common.InstallCrashHandler("")

	if err := common.ReplaceInStruct(config, common.EnvKeyMap(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve configuration references: %v\n", err)
		os.Exit(1)
	}

	application, err := app.New(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	// Pick up an import that is already running
	if _, err := application.Controller.Refresh(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Initial status check failed")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"subimport",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	controller := application.Controller
	client := application.ImportClient

	mcpServer.AddTool(createImportStatusTool(), handleImportStatus(controller, logger))
	mcpServer.AddTool(createImportLogsTool(), handleImportLogs(controller, logger))
	mcpServer.AddTool(createStartImportTool(), handleStartImport(controller, client, config.Import.DefaultDelimiter, logger))
	mcpServer.AddTool(createStopImportTool(), handleStopImport(controller, logger))
	mcpServer.AddTool(createClearImportTool(), handleClearImport(controller, logger))
	mcpServer.AddTool(createListListsTool(), handleListLists(client, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
		application.Close()
		os.Exit(1)
	}
}
