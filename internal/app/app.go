// Package app initializes and runs the site generator.
// It configures logging, selects the user source, runs one generation
// and optionally keeps serving the result until interrupted.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/usersite/internal/config"
	"github.com/patric-chuzhbe/usersite/internal/logger"
	"github.com/patric-chuzhbe/usersite/internal/models"
	"github.com/patric-chuzhbe/usersite/internal/preview"
	"github.com/patric-chuzhbe/usersite/internal/randomuser"
	"github.com/patric-chuzhbe/usersite/internal/service"
	"github.com/patric-chuzhbe/usersite/internal/site"
)

const shutdownTimeout = 10 * time.Second

type usersSource interface {
	FetchUsers(ctx context.Context) ([]models.User, error)
}

type generator interface {
	Generate(ctx context.Context) (service.Report, error)
}

// App holds the configuration and the generation service of one process.
type App struct {
	cfg       *config.Config
	generator generator
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting the user source
// - setting up the generation service
func New(options ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(options...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	source, err := getSourceByType(app.cfg)
	if err != nil {
		return nil, err
	}

	app.generator = service.New(
		source,
		site.New(app.cfg.OutputDir),
		app.cfg.PageSize,
		nil,
	)

	return app, nil
}

// Run generates the site. If a preview address is configured it then serves
// the output directory until ctx is done or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.generator.Generate(ctx)
	if err != nil {
		logger.Log.Errorln("generation failed", "run", report.RunID, "error", err)
		return fmt.Errorf("generation %s failed: %w", report.RunID, err)
	}
	logger.Log.Infoln(
		"generation finished",
		"run", report.RunID,
		"users", report.Users,
		"overviewPages", report.OverviewPages,
		"profiles", report.Profiles,
		"outputDir", a.cfg.OutputDir,
	)

	if a.cfg.PreviewAddr == "" {
		return nil
	}

	return a.servePreview(ctx)
}

func (a *App) servePreview(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.cfg.PreviewAddr,
		Handler:           preview.New(a.cfg.OutputDir, a.cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Log.Infoln("preview server running", "PreviewAddr", a.cfg.PreviewAddr)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Stopping the preview server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("preview server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableSourceType(cfg *config.Config) int {
	if cfg.SourceFile != "" {
		return models.SourceTypeFile
	}

	if cfg.APIBaseURL != "" {
		return models.SourceTypeAPI
	}

	return models.SourceTypeUnknown
}

func getSourceByType(cfg *config.Config) (usersSource, error) {
	switch getAvailableSourceType(cfg) {
	case models.SourceTypeFile:
		return site.NewFileSource(cfg.SourceFile), nil

	case models.SourceTypeAPI:
		return randomuser.New(
			cfg.APIBaseURL,
			cfg.RequestTimeout,
			cfg.ResultsCount,
			cfg.Nationality,
		), nil
	}

	return nil, errors.New("unknown user source type")
}
