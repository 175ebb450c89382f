package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/common"
	"github.com/ternarybob/subimport/internal/httpclient"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/jobs/importer"
	"github.com/ternarybob/subimport/internal/services/events"
	"github.com/ternarybob/subimport/internal/services/importapi"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Event-driven services
	EventService interfaces.EventService

	// Transport
	ImportClient *importapi.Client

	// Import job lifecycle
	Controller *importer.Controller
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("ordering", cfg.Import.Ordering).
		Int("rate_limit", cfg.API.RateLimit).
		Msg("Application initialized")

	return app, nil
}

// initServices wires transport, event bus and controller
func (a *App) initServices() error {
	timeout, err := a.Config.API.TimeoutDuration()
	if err != nil {
		return err
	}

	// 1. Event service with logger subscriber
	a.EventService = events.NewService(a.Logger)
	if err := events.SubscribeLoggerToAllEvents(a.EventService, a.Logger); err != nil {
		return fmt.Errorf("failed to subscribe logger to events: %w", err)
	}

	// 2. Import API client
	httpClient := httpclient.NewHTTPClientWithAuth(a.Config.API.Username, a.Config.API.Token, timeout)
	a.ImportClient = importapi.NewClient(a.Config.API.BaseURL,
		importapi.WithHTTPClient(httpClient),
		importapi.WithLogger(a.Logger),
		importapi.WithRateLimit(a.Config.API.RateLimit),
	)

	// 3. Controller
	a.Controller = importer.NewController(a.ImportClient, a.EventService, a.Logger,
		importer.WithOrdering(a.Config.Import.Ordering),
		importer.WithMaxConsecutiveFailures(a.Config.Import.MaxConsecutiveFailures),
	)

	return nil
}

// Close stops polling and shuts down the event bus
func (a *App) Close() error {
	if a.Controller != nil {
		if err := a.Controller.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close import controller")
		}
	}
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}
	a.Logger.Debug().Msg("Application closed")
	return nil
}
