package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pairlens/internal/model"
	"pairlens/internal/service"
	"pairlens/internal/transport/rest/middleware"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Generate handles POST /v1/reports
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if middleware.GetCallerID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.reportSvc.Generate(r.Context(), req)
	if err != nil {
		writeCategorized(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Get handles GET /v1/reports/{partnershipId}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if middleware.GetCallerID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	partnershipID := mux.Vars(r)["partnershipId"]
	report, err := h.reportSvc.GetReport(r.Context(), partnershipID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// writeCategorized maps the pipeline error taxonomy onto HTTP statuses and
// emits the {error, details} failure shape.
func writeCategorized(w http.ResponseWriter, err error) {
	category := service.CategoryOf(err)

	status := http.StatusBadGateway
	switch category {
	case service.CategoryValidation:
		status = http.StatusBadRequest
	case service.CategoryConfiguration, service.CategoryPersistence:
		status = http.StatusInternalServerError
	case service.CategoryProviderRateLimit:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   string(category),
		"details": err.Error(),
	})
}
