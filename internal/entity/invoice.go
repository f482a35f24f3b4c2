package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extract/constants"
)

// Invoice is a stored extraction result for data transfer between layers.
type Invoice struct {
	ID               uuid.UUID                  `json:"id"`
	Filename         string                     `json:"filename"`
	VendorName       *string                    `json:"vendor_name"`
	InvoiceNumber    *string                    `json:"invoice_number"`
	InvoiceDate      *string                    `json:"invoice_date"`
	Currency         *string                    `json:"currency"`
	Subtotal         *decimal.Decimal           `json:"subtotal"`
	Tax              *decimal.Decimal           `json:"tax"`
	Total            *decimal.Decimal           `json:"total"`
	ConfidenceScore  float64                    `json:"confidence_score"`
	ValidationStatus constants.ValidationStatus `json:"validation_status"`
	ValidationErrors []string                   `json:"validation_errors"`
	NeedsReview      bool                       `json:"needs_review"`
	ContentHash      string                     `json:"content_hash"`
	CreatedAt        time.Time                  `json:"created_at"`
	Items            []InvoiceItem              `json:"items"`
}

// InvoiceItem is one stored line item, ordered by Position within its invoice.
type InvoiceItem struct {
	ID          uuid.UUID        `json:"id"`
	InvoiceID   uuid.UUID        `json:"invoice_id"`
	Position    int              `json:"position"`
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Amount      *decimal.Decimal `json:"amount"`
}
