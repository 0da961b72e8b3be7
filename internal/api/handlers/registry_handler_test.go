package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/backend/internal/api/handlers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

type stubRegistry struct {
	patients map[string]*entities.Patient
	doctors  map[string]*entities.Doctor
	visits   map[string]*entities.Visit
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		patients: map[string]*entities.Patient{},
		doctors:  map[string]*entities.Doctor{},
		visits:   map[string]*entities.Visit{},
	}
}

func (s *stubRegistry) RegisterPatient(ctx context.Context, p *entities.Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("patient name is required")
	}
	p.ID = "pat-1"
	s.patients[p.ID] = p
	return nil
}

func (s *stubRegistry) GetPatient(ctx context.Context, id string) (*entities.Patient, error) {
	if p, ok := s.patients[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("patient not found")
}

func (s *stubRegistry) RegisterDoctor(ctx context.Context, d *entities.Doctor) error {
	d.ID = "doc-1"
	d.IsActive = true
	s.doctors[d.ID] = d
	return nil
}

func (s *stubRegistry) GetDoctor(ctx context.Context, id string) (*entities.Doctor, error) {
	if d, ok := s.doctors[id]; ok {
		return d, nil
	}
	return nil, apperrors.NewNotFoundError("doctor not found")
}

func (s *stubRegistry) ListDoctors(ctx context.Context, referrersOnly bool) ([]*entities.Doctor, error) {
	out := []*entities.Doctor{}
	for _, d := range s.doctors {
		if !referrersOnly || d.IsReferrer {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubRegistry) CheckIn(ctx context.Context, patientID, doctorID, complaint string) (*entities.Visit, error) {
	if _, ok := s.patients[patientID]; !ok {
		return nil, apperrors.NewNotFoundError("patient not found")
	}
	v := &entities.Visit{ID: "visit-1", PatientID: patientID, DoctorID: doctorID, Complaint: complaint}
	s.visits[v.ID] = v
	return v, nil
}

func (s *stubRegistry) GetVisit(ctx context.Context, id string) (*entities.Visit, error) {
	if v, ok := s.visits[id]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFoundError("visit not found")
}

type stubConsultationBiller struct {
	discount pricing.Discount
}

func (s *stubConsultationBiller) CreateConsultationInvoice(ctx context.Context, visitID string, discount pricing.Discount) (*entities.Invoice, error) {
	s.discount = discount
	return &entities.Invoice{ID: "inv-1", VisitID: visitID, Domain: entities.BillingDomainConsultation}, nil
}

func TestRegistryHandler_PatientLifecycle(t *testing.T) {
	registry := newStubRegistry()
	handler := handlers.NewRegistryHandler(registry, &stubConsultationBiller{})

	body := `{"name":"Asha Rao","phone":"9800000000","date_of_birth":"1990-04-12"}`
	w := httptest.NewRecorder()
	handler.CreatePatient(w, httptest.NewRequest("POST", "/api/patients", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var created entities.Patient
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "pat-1", created.ID)
	require.NotNil(t, created.DateOfBirth)
	assert.Equal(t, 1990, created.DateOfBirth.Year())

	req := httptest.NewRequest("GET", "/api/patients/pat-1", nil)
	req.SetPathValue("id", "pat-1")
	w = httptest.NewRecorder()
	handler.GetPatient(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/patients/nope", nil)
	req.SetPathValue("id", "nope")
	w = httptest.NewRecorder()
	handler.GetPatient(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryHandler_CreatePatient_Invalid(t *testing.T) {
	handler := handlers.NewRegistryHandler(newStubRegistry(), &stubConsultationBiller{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "bad birth date", body: `{"name":"Asha","date_of_birth":"12/04/1990"}`},
		{name: "missing name", body: `{"phone":"9800000000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.CreatePatient(w, httptest.NewRequest("POST", "/api/patients", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegistryHandler_Doctors(t *testing.T) {
	registry := newStubRegistry()
	handler := handlers.NewRegistryHandler(registry, &stubConsultationBiller{})

	body := `{"name":"Dr. Mehta","consultation_fee":"500","incentive_percent":"10","is_referrer":true}`
	w := httptest.NewRecorder()
	handler.CreateDoctor(w, httptest.NewRequest("POST", "/api/doctors", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, registry.doctors["doc-1"].IncentivePercent.Equal(decimal.NewFromInt(10)))

	w = httptest.NewRecorder()
	handler.ListDoctors(w, httptest.NewRequest("GET", "/api/doctors?referrers=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)

	w = httptest.NewRecorder()
	handler.ListDoctors(w, httptest.NewRequest("GET", "/api/doctors?referrers=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryHandler_CheckInAndConsultation(t *testing.T) {
	registry := newStubRegistry()
	registry.patients["pat-1"] = &entities.Patient{ID: "pat-1", Name: "Asha"}
	biller := &stubConsultationBiller{}
	handler := handlers.NewRegistryHandler(registry, biller)

	w := httptest.NewRecorder()
	handler.CheckIn(w, httptest.NewRequest("POST", "/api/visits", strings.NewReader(`{"patient_id":"pat-1","doctor_id":"doc-1","complaint":"fever"}`)))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest("GET", "/api/visits/visit-1", nil)
	req.SetPathValue("id", "visit-1")
	w = httptest.NewRecorder()
	handler.GetVisit(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("POST", "/api/visits/visit-1/consultation", strings.NewReader(`{"discount":{"type":"amount","value":"100"}}`))
	req.SetPathValue("id", "visit-1")
	w = httptest.NewRecorder()
	handler.CreateConsultationInvoice(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, biller.discount.Equal(pricing.Amount(decimal.NewFromInt(100))))

	req = httptest.NewRequest("POST", "/api/visits/visit-1/consultation", nil)
	req.SetPathValue("id", "visit-1")
	w = httptest.NewRecorder()
	handler.CreateConsultationInvoice(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, pricing.DiscountNone, biller.discount.Kind())

	w = httptest.NewRecorder()
	handler.CheckIn(w, httptest.NewRequest("POST", "/api/visits", strings.NewReader(`{"patient_id":"ghost","doctor_id":"doc-1"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
