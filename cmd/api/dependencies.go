package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hotelops/roomboard/internal/domain/classify"
	"github.com/hotelops/roomboard/internal/domain/classify/handler"
	"github.com/hotelops/roomboard/internal/domain/report"
	"github.com/hotelops/roomboard/pkg/compdf"
	"github.com/hotelops/roomboard/pkg/config"
	"github.com/hotelops/roomboard/pkg/cron"
	"github.com/hotelops/roomboard/pkg/pdftext"
	"github.com/hotelops/roomboard/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	FileStorage storage.Storage
	Extractor   *pdftext.Extractor
	Converter   *compdf.Client

	// Services
	ClassifyService *classify.Service
	ReportService   *report.Service

	// Handlers
	ClassifyHandler *handler.ClassifyHandler

	// Background jobs
	CleanupScheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initStorage() error {
	store, err := storage.NewLocalStorage(d.Config.Upload.Dir)
	if err != nil {
		return err
	}
	d.FileStorage = store

	retention := time.Duration(d.Config.Cleanup.RetentionMin) * time.Minute
	d.CleanupScheduler = cron.NewScheduler(d.Logger, store, retention)

	d.Logger.Info("file storage initialized", "dir", d.Config.Upload.Dir)
	return nil
}

func (d *Dependencies) initServices() error {
	d.Extractor = pdftext.NewExtractor(d.Logger)
	d.ClassifyService = classify.NewService(d.Logger)

	projector := report.NewProjector(d.Config.Template, d.Logger)

	// Image rendering is optional; without ComPDF credentials the
	// service still produces the filled spreadsheet.
	var renderer *report.Renderer
	if d.Config.Render.Enabled {
		d.Converter = compdf.NewClient(compdf.Config{
			BaseURL:   d.Config.ComPDF.BaseURL,
			PublicKey: d.Config.ComPDF.PublicKey,
		}, d.Logger)
		renderer = report.NewRenderer(d.Converter, d.Config.Render.DPI, d.Logger)
	}

	d.ReportService = report.NewService(projector, renderer, d.FileStorage, d.Logger)

	d.Logger.Info("services initialized", "render_enabled", d.Config.Render.Enabled)
	return nil
}

func (d *Dependencies) initHandlers() {
	d.ClassifyHandler = handler.NewClassifyHandler(
		d.ClassifyService,
		d.ReportService,
		d.Extractor,
		d.FileStorage,
		d.Logger,
	)
	d.Logger.Info("handlers initialized")
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.CleanupScheduler != nil {
		d.CleanupScheduler.Stop()
	}
	d.Logger.Info("cleanup completed")
}
