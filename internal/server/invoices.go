package server

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
	"github.com/joseph-ayodele/invoice-extract/internal/utils"
)

// ScanRequest carries one document's OCR output.
type ScanRequest struct {
	Filename  string         `json:"filename"`
	Fragments []ocr.Fragment `json:"fragments"`
	Persist   bool           `json:"persist"`
}

func (r ScanRequest) validate() error {
	v := common.NewValidator()
	if r.Persist {
		v.Field("filename", r.Filename, common.Required, common.MaxLength(255))
	}
	if r.Fragments == nil {
		v.Field("fragments", nil, common.Required)
	}
	return v.Error()
}

func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ScanRequest
	if err := utils.FromStruct(req, &in); err != nil {
		return nil, common.InvalidArgumentErrorf("decode request: %v", err)
	}
	if err := in.validate(); err != nil {
		return nil, common.ToStatus(err)
	}

	if !in.Persist {
		res := s.docs.Extract(in.Fragments)
		out, err := utils.ToStruct(res)
		if err != nil {
			return nil, common.InternalErrorf("encode result: %v", err)
		}
		return out, nil
	}

	inv, err := s.docs.ProcessDocument(ctx, in.Filename, in.Fragments)
	if err != nil {
		s.logger.Error("extract.persist.failed", "filename", in.Filename, "request_id", common.RequestIDFromContext(ctx), "err", err)
		return nil, common.ToStatus(err)
	}
	out, err := utils.ToStruct(map[string]any{"invoice": utils.ToInvoiceView(inv)})
	if err != nil {
		return nil, common.InternalErrorf("encode invoice: %v", err)
	}
	return out, nil
}

func (s *ExtractionService) GetInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := strings.TrimSpace(req.GetFields()["id"].GetStringValue())
	if err := common.ValidateAndReturnError(common.NewValidator().Field("id", raw, common.Required, common.UUID)); err != nil {
		return nil, err
	}

	inv, err := s.invoicesRepo.GetByID(ctx, uuid.MustParse(raw))
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("get invoice failed", "id", raw, "err", err)
		}
		return nil, common.ToStatus(err)
	}
	out, err := utils.ToStruct(map[string]any{"invoice": utils.ToInvoiceView(inv)})
	if err != nil {
		return nil, common.InternalErrorf("encode invoice: %v", err)
	}
	return out, nil
}

type listRequest struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (r listRequest) filter() (repository.ListFilter, error) {
	f := repository.ListFilter{Limit: r.Limit, Offset: r.Offset}
	switch st := constants.ValidationStatus(strings.ToUpper(strings.TrimSpace(r.Status))); st {
	case "":
	case constants.ValidationStatusValid, constants.ValidationStatusInvalid:
		f.Status = st
	default:
		return f, common.NewAppError(common.CodeContract, "status must be VALID or INVALID", common.ErrInvalidInput)
	}
	if r.Limit < 0 || r.Offset < 0 {
		return f, common.NewAppError(common.CodeContract, "limit and offset must be non-negative", common.ErrInvalidInput)
	}
	return f, nil
}

func (s *ExtractionService) ListInvoices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listRequest
	if err := utils.FromStruct(req, &in); err != nil {
		return nil, common.InvalidArgumentErrorf("decode request: %v", err)
	}
	filter, err := in.filter()
	if err != nil {
		return nil, common.ToStatus(err)
	}
	invs, err := s.invoicesRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list invoices failed", "err", err)
		return nil, common.ToStatus(err)
	}
	out, err := utils.ToStruct(map[string]any{"invoices": utils.ToInvoiceViews(invs)})
	if err != nil {
		return nil, common.InternalErrorf("encode invoices: %v", err)
	}
	return out, nil
}
