package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"garage-backend/internal/services"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// LoyaltyCSV downloads the customer aggregate table
func (h *ReportHandler) LoyaltyCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.LoyaltyCSV(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="loyalty.csv"`)
	w.Write(data)
}

// RevenueCSV downloads completed estimates with their totals
func (h *ReportHandler) RevenueCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.RevenueCSV(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="revenue.csv"`)
	w.Write(data)
}

// EstimatePDF downloads a printable estimate
func (h *ReportHandler) EstimatePDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, err := h.Service.EstimatePDF(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="estimate_%d.pdf"`, id))
	w.Write(data)
}
