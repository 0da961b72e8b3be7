package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
)

// RegistryService defines the patient, doctor and visit operations used by the handler.
type RegistryService interface {
	RegisterPatient(ctx context.Context, p *entities.Patient) error
	GetPatient(ctx context.Context, id string) (*entities.Patient, error)
	RegisterDoctor(ctx context.Context, d *entities.Doctor) error
	GetDoctor(ctx context.Context, id string) (*entities.Doctor, error)
	ListDoctors(ctx context.Context, referrersOnly bool) ([]*entities.Doctor, error)
	CheckIn(ctx context.Context, patientID, doctorID, complaint string) (*entities.Visit, error)
	GetVisit(ctx context.Context, id string) (*entities.Visit, error)
}

// ConsultationBiller creates the one-step consultation invoice.
type ConsultationBiller interface {
	CreateConsultationInvoice(ctx context.Context, visitID string, discount pricing.Discount) (*entities.Invoice, error)
}

// RegistryHandler handles patients, doctors and visit check-in
type RegistryHandler struct {
	registry RegistryService
	billing  ConsultationBiller
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registry RegistryService, billing ConsultationBiller) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		billing:  billing,
	}
}

type patientRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address"`
}

// CreatePatient handles POST /api/patients
func (h *RegistryHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patient := &entities.Patient{
		Name:    req.Name,
		Phone:   req.Phone,
		Gender:  req.Gender,
		Address: req.Address,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = &dob
	}

	if err := h.registry.RegisterPatient(r.Context(), patient); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, patient)
}

// GetPatient handles GET /api/patients/{id}
func (h *RegistryHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	patient, err := h.registry.GetPatient(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}

type doctorRequest struct {
	Name             string          `json:"name"`
	Specialization   string          `json:"specialization"`
	ConsultationFee  decimal.Decimal `json:"consultation_fee"`
	IncentivePercent decimal.Decimal `json:"incentive_percent"`
	IsReferrer       bool            `json:"is_referrer"`
}

// CreateDoctor handles POST /api/doctors
func (h *RegistryHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doctor := &entities.Doctor{
		Name:             req.Name,
		Specialization:   req.Specialization,
		ConsultationFee:  req.ConsultationFee,
		IncentivePercent: req.IncentivePercent,
		IsReferrer:       req.IsReferrer,
	}
	if err := h.registry.RegisterDoctor(r.Context(), doctor); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doctor)
}

// GetDoctor handles GET /api/doctors/{id}
func (h *RegistryHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.registry.GetDoctor(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// ListDoctors handles GET /api/doctors?referrers=true
func (h *RegistryHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	referrersOnly := false
	if v := r.URL.Query().Get("referrers"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "referrers must be true or false")
			return
		}
		referrersOnly = parsed
	}

	doctors, err := h.registry.ListDoctors(r.Context(), referrersOnly)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

type checkInRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Complaint string `json:"complaint"`
}

// CheckIn handles POST /api/visits
func (h *RegistryHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	visit, err := h.registry.CheckIn(r.Context(), req.PatientID, req.DoctorID, req.Complaint)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, visit)
}

// GetVisit handles GET /api/visits/{id}
func (h *RegistryHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	visit, err := h.registry.GetVisit(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, visit)
}

type consultationRequest struct {
	Discount pricing.Discount `json:"discount"`
}

// CreateConsultationInvoice handles POST /api/visits/{id}/consultation.
// An empty body bills the fee without discount.
func (h *RegistryHandler) CreateConsultationInvoice(w http.ResponseWriter, r *http.Request) {
	var req consultationRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	invoice, err := h.billing.CreateConsultationInvoice(r.Context(), r.PathValue("id"), req.Discount)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, invoice)
}
