package api

import (
	"fmt"
	"net/http"

	"github.com/example/ec-storefront/internal/domain/report"
	"github.com/example/ec-storefront/internal/export"
	"github.com/xuri/excelize/v2"
)

// ReportHandlers serves the back-office order list, sales reports and exports.
type ReportHandlers struct {
	reports *report.Service
}

func NewReportHandlers(reports *report.Service) *ReportHandlers {
	return &ReportHandlers{reports: reports}
}

func parseReportFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	return report.ParseFilter(q.Get("startDate"), q.Get("endDate"), q.Get("status"))
}

// ListOrders returns every order with its owner's email, newest first.
func (h *ReportHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.reports.OrdersWithOwners(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *ReportHandlers) Sales(w http.ResponseWriter, r *http.Request) {
	f, err := parseReportFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sales, err := h.reports.Sales(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *ReportHandlers) ExportDaily(w http.ResponseWriter, r *http.Request) {
	f, err := parseReportFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	days, err := h.reports.DailyRows(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	book, err := export.DailySalesWorkbook(days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeWorkbook(w, r, export.DailySalesFilename, book)
}

func (h *ReportHandlers) ExportOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseReportFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := h.reports.OrderRows(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	book, err := export.OrdersWorkbook(rows)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeWorkbook(w, r, export.OrdersFilename, book)
}

func writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, book *excelize.File) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.Write(w, book); err != nil {
		// Headers are already sent; the client sees a truncated file.
		respondLogOnly(r, err)
	}
}
