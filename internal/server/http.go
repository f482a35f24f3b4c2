package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/export"
	"github.com/joseph-ayodele/invoice-extract/internal/repository"
	"github.com/joseph-ayodele/invoice-extract/internal/utils"
)

// maxScanBody bounds the size of an uploaded fragment document.
const maxScanBody = 16 << 20

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// HTTPHandler serves the REST surface under /api/v1.
type HTTPHandler struct {
	docs         DocumentService
	invoicesRepo repository.InvoiceRepository
	exports      *export.Service
	db           Pinger
	logger       *slog.Logger
}

func NewHTTPHandler(docs DocumentService, invoicesRepo repository.InvoiceRepository, exports *export.Service, db Pinger, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		docs:         docs,
		invoicesRepo: invoicesRepo,
		exports:      exports,
		db:           db,
		logger:       logger,
	}
}

// Routes builds the chi router.
func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/extract", h.handleExtract)
		r.Post("/scan", h.handleScan)
		r.Get("/invoices", h.handleListInvoices)
		r.Get("/invoices/{id}", h.handleGetInvoice)
		r.Get("/export.csv", h.handleExportCSV)
		r.Get("/export.xlsx", h.handleExportXLSX)
	})
	return r
}

func (h *HTTPHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, id := common.EnsureRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		h.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", id,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

type errorBody struct {
	Error     string `json:"error"`
	InvoiceID string `json:"invoice_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context(), 2*time.Second); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) decodeScan(w http.ResponseWriter, r *http.Request) (ScanRequest, bool) {
	var req ScanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScanBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

// handleExtract runs extraction only; nothing is stored.
// POST /api/v1/extract
func (h *HTTPHandler) handleExtract(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.docs.Extract(req.Fragments))
}

// handleScan extracts and stores one document.
// POST /api/v1/scan
func (h *HTTPHandler) handleScan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScan(w, r)
	if !ok {
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	inv, err := h.docs.ProcessDocument(r.Context(), req.Filename, req.Fragments)
	if err != nil {
		code := statusFor(err)
		body := errorBody{Error: err.Error()}
		if code == http.StatusConflict && inv != nil {
			body.InvoiceID = inv.ID.String()
		}
		if code == http.StatusInternalServerError {
			h.logger.Error("scan failed", "filename", req.Filename, "error", err)
			body.Error = "internal error"
		}
		writeJSON(w, code, body)
		return
	}
	writeJSON(w, http.StatusCreated, utils.ToInvoiceView(inv))
}

// GET /api/v1/invoices?status=VALID&limit=50&offset=0
func (h *HTTPHandler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invs, err := h.invoicesRepo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list invoices failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, utils.ToInvoiceViews(invs))
}

func listFilterFromQuery(r *http.Request) (repository.ListFilter, error) {
	q := r.URL.Query()
	in := listRequest{Status: q.Get("status")}
	for name, dst := range map[string]*int{"limit": &in.Limit, "offset": &in.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.ListFilter{}, common.NewAppError(common.CodeContract, name+" must be an integer", common.ErrInvalidInput)
		}
		*dst = n
	}
	return in.filter()
}

// GET /api/v1/invoices/{id}
func (h *HTTPHandler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	inv, err := h.invoicesRepo.GetByID(r.Context(), id)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			h.logger.Error("get invoice failed", "id", id, "error", err)
		}
		writeError(w, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, utils.ToInvoiceView(inv))
}
