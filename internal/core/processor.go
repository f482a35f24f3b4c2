package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	"github.com/joseph-ayodele/invoice-extract/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
	"github.com/joseph-ayodele/invoice-extract/internal/schema"
	"github.com/joseph-ayodele/invoice-extract/internal/utils"
)

// Processor runs the extraction pipeline over one document and stores the outcome.
type Processor struct {
	logger        *slog.Logger
	pipeline      *pipeline.Pipeline
	invoicesRepo  repository.InvoiceRepository
	minConfidence float64
}

func NewProcessor(
	logger *slog.Logger,
	p *pipeline.Pipeline,
	invoicesRepo repository.InvoiceRepository,
	minConfidence float64,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if minConfidence == 0 {
		minConfidence = constants.DefaultMinConfidence
	}
	return &Processor{
		logger:        logger,
		pipeline:      p,
		invoicesRepo:  invoicesRepo,
		minConfidence: minConfidence,
	}
}

// Extract runs the pipeline without touching storage.
func (p *Processor) Extract(frags []ocr.Fragment) pipeline.Result {
	return p.pipeline.Run(frags)
}

// ContentHash is the hex SHA-256 of the reconstructed text, one line per row.
func ContentHash(lines []ocr.Line) string {
	sum := sha256.Sum256([]byte(strings.Join(ocr.Texts(lines), "\n")))
	return hex.EncodeToString(sum[:])
}

// ProcessDocument extracts fields from a document's fragments and stores the
// invoice. A document whose text was already stored fails with
// common.ErrDuplicate.
func (p *Processor) ProcessDocument(ctx context.Context, filename string, frags []ocr.Fragment) (*entity.Invoice, error) {
	// 1) lines + fields
	lines := p.pipeline.Lines(frags)
	res := p.pipeline.RunLines(lines)
	ocrConfidence := ocr.MeanConfidence(frags)

	// 2) duplicate check on the reconstructed text
	hash := ContentHash(lines)
	existing, err := p.invoicesRepo.GetByContentHash(ctx, hash)
	switch {
	case err == nil:
		p.logger.Info("processor.duplicate", "filename", filename, "existing_id", existing.ID)
		return existing, common.NewAppError(common.CodeDuplicate,
			fmt.Sprintf("invoice already exists with id %s", existing.ID), common.ErrDuplicate)
	case !errors.Is(err, common.ErrNotFound):
		p.logger.Error("processor.lookup.failed", "filename", filename, "err", err)
		return nil, err
	}

	// 3) the emitted record must satisfy the result contract
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	if err := schema.ValidateResult(raw); err != nil {
		p.logger.Error("processor.contract.failed", "filename", filename, "err", err)
		return nil, common.NewAppError(common.CodeContract, "result does not match contract", err)
	}

	// 4) store
	inv := utils.ToInvoice(res, filename, hash)
	inv.NeedsReview = !res.Validation.IsValid || res.Confidence < p.minConfidence
	if inv.NeedsReview {
		p.logger.Warn("invoice needs review",
			"filename", filename,
			"confidence", res.Confidence,
			"ocr_confidence", ocrConfidence,
			"errors", res.Validation.Errors,
		)
	}

	stored, err := p.invoicesRepo.Create(ctx, inv)
	if err != nil {
		p.logger.Error("processor.save.failed", "filename", filename, "err", err)
		return nil, err
	}
	p.logger.Info("processor.document.ok",
		"id", stored.ID,
		"filename", filename,
		"status", stored.ValidationStatus,
		"confidence", stored.ConfidenceScore,
		"ocr_confidence", ocrConfidence,
	)
	return stored, nil
}
