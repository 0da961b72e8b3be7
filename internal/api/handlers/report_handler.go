package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

const dateLayout = services.DateLayout

// ReportService defines the accounting roll-ups used by the handler.
type ReportService interface {
	Daily(ctx context.Context, day time.Time) (*entities.DailyReport, error)
	GST(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error)
	Incentives(ctx context.Context) ([]entities.IncentiveSummary, error)
}

// ReportHandler handles accounting reports
type ReportHandler struct {
	reports ReportService
	now     func() time.Time
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		now:     time.Now,
	}
}

// parseDate reads a YYYY-MM-DD query value, falling back to today when absent.
func (h *ReportHandler) parseDate(r *http.Request, key string) (time.Time, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		now := h.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	}
	day, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Daily handles GET /api/reports/daily?date=YYYY-MM-DD
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day, ok := h.parseDate(r, "date")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	report, err := h.reports.Daily(r.Context(), day)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// GST handles GET /api/reports/gst?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ReportHandler) GST(w http.ResponseWriter, r *http.Request) {
	from, ok := h.parseDate(r, "from")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, ok := h.parseDate(r, "to")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	rows, err := h.reports.GST(r.Context(), from, to)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"from": from.Format(dateLayout),
		"to":   to.Format(dateLayout),
		"rows": rows,
	})
}

// Incentives handles GET /api/reports/incentives
func (h *ReportHandler) Incentives(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.reports.Incentives(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": summaries,
		"count":   len(summaries),
	})
}
