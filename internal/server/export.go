package server

import (
	"bytes"
	"net/http"
)

// GET /api/v1/export.csv
func (h *HTTPHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// render fully first so a failure can still become a 500
	var buf bytes.Buffer
	if err := h.exports.ExportCSV(r.Context(), &buf, filter); err != nil {
		h.logger.Error("export.csv.failed", "err", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// GET /api/v1/export.xlsx
func (h *HTTPHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	xlsx, err := h.exports.ExportXLSX(r.Context(), filter)
	if err != nil {
		h.logger.Error("export.xlsx.failed", "err", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	_, _ = w.Write(xlsx)
}
