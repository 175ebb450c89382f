package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/app"
	"github.com/ternarybob/subimport/internal/common"
	"github.com/ternarybob/subimport/internal/jobs/importer"
	"github.com/ternarybob/subimport/internal/models"
	"github.com/ternarybob/subimport/internal/services/payload"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	baseURL      = flag.String("url", "", "List manager base URL (overrides config)")
	filePath     = flag.String("file", "", "CSV or ZIP file to import")
	listRefs     = flag.String("lists", "", "Comma separated list ids or names to import into")
	delimiter    = flag.String("delim", "", "CSV delimiter (overrides config, default \",\")")
	override     = flag.Bool("override", false, "Overwrite the status of existing subscribers")
	watch        = flag.Bool("watch", false, "Attach to the current import without submitting")
	keep         = flag.Bool("keep", false, "Do not clear the job once it finished or failed")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

const requestTimeout = 30 * time.Second

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer common.RecoverWithCrashFile()
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Subimport version %s\n", common.GetFullVersion())
		return 0
	}

	// Startup sequence:
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides
	// 3. Initialize logger
	// 4. Resolve {KEY} references from the environment
	// 5. Print banner
	if len(configFiles) == 0 {
		if _, err := os.Stat("subimport.toml"); err == nil {
			configFiles = append(configFiles, "subimport.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		return 1
	}
	common.ApplyFlagOverrides(config, *baseURL)

	logger := common.InitLogger(config)
	common.InstallCrashHandler("")

	if err := common.ReplaceInStruct(config, common.EnvKeyMap(), logger); err != nil {
		logger.Error().Err(err).Msg("Failed to resolve configuration references")
		return 1
	}

	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	view := newRenderer(os.Stdout, os.Stderr)
	if err := view.subscribe(application.EventService); err != nil {
		logger.Error().Err(err).Msg("Failed to attach terminal output")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handleSignals(ctx, cancel, application.Controller, logger)

	controller := application.Controller

	state, err := controller.Refresh(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch import status")
		return 1
	}

	if *watch {
		if state.IsIdle() {
			fmt.Println("No import running")
			return 0
		}
	} else if code := submit(ctx, application, state, logger); code != 0 {
		return code
	}

	final, err := controller.WaitTerminal(ctx)
	if err != nil {
		if errors.Is(err, importer.ErrNoActiveJob) {
			fmt.Println("Import was cleared remotely")
			return 0
		}
		logger.Warn().Err(err).Str("state", final.String()).Msg("Stopped waiting for import")
		return 1
	}

	fmt.Printf("Import %s: %d/%d records\n", final.Status, final.Imported, final.Total)

	if config.Import.ClearOnFinish && !*keep {
		doneCtx, doneCancel := context.WithTimeout(context.Background(), requestTimeout)
		defer doneCancel()
		if err := controller.RequestDone(doneCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to clear finished import")
		}
	}

	if final.Status == models.JobStatusFailed {
		return 1
	}
	return 0
}

// submit uploads the file given on the command line. A job left over in a
// terminal state is cleared first when the configuration allows it.
func submit(ctx context.Context, application *app.App, state models.JobState, logger arbor.ILogger) int {
	controller := application.Controller
	config := application.Config

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: subimport -file subscribers.csv -lists 1,2 [-delim ,] [-override]")
		fmt.Fprintln(os.Stderr, "       subimport -watch")
		return 2
	}

	switch {
	case state.Status.IsActive():
		fmt.Fprintf(os.Stderr, "An import is already running (%s). Use -watch to follow it.\n", state)
		return 1
	case state.Status.IsTerminal():
		if !config.Import.ClearOnFinish {
			fmt.Fprintf(os.Stderr, "The previous import is %s. Clear it first or enable clear_on_finish.\n", state.Status)
			return 1
		}
		if err := controller.RequestDone(ctx); err != nil {
			return 1
		}
	}

	file, err := payload.Load(*filePath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to prepare upload")
		return 1
	}

	lists, err := importer.ResolveListIDs(ctx, application.ImportClient, strings.Split(*listRefs, ","))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve lists")
		return 1
	}

	delim := config.Import.DefaultDelimiter
	if *delimiter != "" {
		delim = *delimiter
	}

	req, err := models.NewUploadRequest(lists, *override || config.Import.OverrideStatus, delim, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid import: %v\n", err)
		return 2
	}

	if err := controller.Submit(ctx, req); err != nil {
		return 1
	}
	return 0
}

// handleSignals asks the server to stop the job on the first interrupt and
// gives up waiting on the second.
func handleSignals(ctx context.Context, cancel context.CancelFunc, controller *importer.Controller, logger arbor.ILogger) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	common.SafeGo(logger, "signalHandler", func() {
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}

		logger.Info().Msg("Interrupt received - stopping import (press Ctrl+C again to quit)")
		stopCtx, stopCancel := context.WithTimeout(ctx, requestTimeout)
		err := controller.RequestStop(stopCtx)
		stopCancel()
		if err != nil && !importer.IsKind(err, importer.KindRequest) {
			cancel()
			return
		}

		select {
		case <-sigChan:
			logger.Info().Msg("Second interrupt received - exiting without waiting")
			cancel()
		case <-ctx.Done():
		}
	})
}
