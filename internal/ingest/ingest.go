package ingest

import (
	"context"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath       string                     `json:"source_path"`
	InvoiceID        string                     `json:"invoice_id,omitempty"`
	Deduplicated     bool                       `json:"deduplicated"`
	ValidationStatus constants.ValidationStatus `json:"validation_status,omitempty"`
	Confidence       float64                    `json:"confidence"`
	NeedsReview      bool                       `json:"needs_review"`
	Err              string                     `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

// DocumentProcessor extracts and stores one document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, filename string, frags []ocr.Fragment) (*entity.Invoice, error)
}

// Ingestor is the behavior the service depends on.
type Ingestor interface {
	// IngestPath a single path.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
