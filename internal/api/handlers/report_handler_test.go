package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/clinicdesk/backend/internal/api/handlers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) Daily(ctx context.Context, day time.Time) (*entities.DailyReport, error) {
	args := m.Called(ctx, day)
	report, _ := args.Get(0).(*entities.DailyReport)
	return report, args.Error(1)
}

func (m *mockReportService) GST(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error) {
	args := m.Called(ctx, from, to)
	rows, _ := args.Get(0).([]entities.GSTBreakdownRow)
	return rows, args.Error(1)
}

func (m *mockReportService) Incentives(ctx context.Context) ([]entities.IncentiveSummary, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]entities.IncentiveSummary)
	return rows, args.Error(1)
}

func sameDay(year int, month time.Month, day int) interface{} {
	return mock.MatchedBy(func(t time.Time) bool {
		return t.Year() == year && t.Month() == month && t.Day() == day
	})
}

func TestReportHandler_Daily(t *testing.T) {
	svc := new(mockReportService)
	handler := handlers.NewReportHandler(svc)
	svc.On("Daily", mock.Anything, sameDay(2024, time.March, 5)).
		Return(&entities.DailyReport{Date: "2024-03-05"}, nil)

	w := httptest.NewRecorder()
	handler.Daily(w, httptest.NewRequest("GET", "/api/reports/daily?date=2024-03-05", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"2024-03-05"`)

	w = httptest.NewRecorder()
	handler.Daily(w, httptest.NewRequest("GET", "/api/reports/daily?date=05-03-2024", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNumberOfCalls(t, "Daily", 1)
}

func TestReportHandler_GST(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		svc := new(mockReportService)
		handler := handlers.NewReportHandler(svc)
		svc.On("GST", mock.Anything, sameDay(2024, time.March, 1), sameDay(2024, time.March, 31)).
			Return([]entities.GSTBreakdownRow{{TaxRatePercent: decimal.NewFromInt(12), HSNCode: "3004"}}, nil)

		w := httptest.NewRecorder()
		handler.GST(w, httptest.NewRequest("GET", "/api/reports/gst?from=2024-03-01&to=2024-03-31", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"from":"2024-03-01"`)
		assert.Contains(t, w.Body.String(), `"3004"`)
	})

	t.Run("reversed range", func(t *testing.T) {
		svc := new(mockReportService)
		handler := handlers.NewReportHandler(svc)
		svc.On("GST", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("report end date is before its start date"))

		w := httptest.NewRecorder()
		handler.GST(w, httptest.NewRequest("GET", "/api/reports/gst?from=2024-03-31&to=2024-03-01", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportHandler_Incentives(t *testing.T) {
	svc := new(mockReportService)
	handler := handlers.NewReportHandler(svc)
	summary := entities.NewIncentiveSummary("doc-1", 2, decimal.NewFromInt(300), decimal.NewFromInt(100))
	svc.On("Incentives", mock.Anything).Return([]entities.IncentiveSummary{summary}, nil)

	w := httptest.NewRecorder()
	handler.Incentives(w, httptest.NewRequest("GET", "/api/reports/incentives", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":"200"`)
}
