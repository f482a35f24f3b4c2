// Package app wires the configured components shared by the binaries.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/core"
	"github.com/joseph-ayodele/invoice-extract/internal/export"
	"github.com/joseph-ayodele/invoice-extract/internal/ingest"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	"github.com/joseph-ayodele/invoice-extract/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
	"github.com/joseph-ayodele/invoice-extract/internal/rules"
	"github.com/joseph-ayodele/invoice-extract/internal/server"
)

type App struct {
	Config    *common.Config
	DB        *repository.DB
	Invoices  repository.InvoiceRepository
	Pipeline  *pipeline.Pipeline
	Processor *core.Processor
	Ingestor  *ingest.FSIngestor
	Exports   *export.Service
	logger    *slog.Logger
}

// NewPipeline loads the extraction rules and builds the pipeline. It needs
// no database.
func NewPipeline(cfg common.ExtractionConfig, logger *slog.Logger) (*pipeline.Pipeline, error) {
	r, err := rules.Load(cfg.RulesPath, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(r, logger, pipeline.WithConcurrentExtraction(cfg.Concurrent)), nil
}

// NewSource picks the external OCR command when one is configured and
// fragment dumps on disk otherwise. The returned set lists the file
// extensions that source understands.
func NewSource(cfg common.ExtractionConfig, logger *slog.Logger) (ocr.Source, map[string]struct{}) {
	if cfg.OCRCommand != "" {
		return ocr.NewCommandSource(cfg.OCRCommand, cfg.OCRArgs, logger), constants.ImageExtensions
	}
	return ocr.NewFileSource(logger), constants.AllowedExtensions
}

// New opens the database and builds every component on top of it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p, err := NewPipeline(cfg.Extraction, logger)
	if err != nil {
		logger.Error("failed to load extraction rules", "path", cfg.Extraction.RulesPath, "error", err)
		return nil, err
	}

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	invoices := repository.NewInvoiceRepository(db, logger)
	proc := core.NewProcessor(logger, p, invoices, cfg.Extraction.MinConfidence)
	src, exts := NewSource(cfg.Extraction, logger)
	ing := ingest.NewFSIngestor(src, proc, logger)
	ing.AllowedExts = exts

	return &App{
		Config:    cfg,
		DB:        db,
		Invoices:  invoices,
		Pipeline:  p,
		Processor: proc,
		Ingestor:  ing,
		Exports:   export.NewService(invoices, logger),
		logger:    logger,
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}
