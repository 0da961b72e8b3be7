package services_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// memoryDraftStore keeps drafts in a map

type memoryDraftStore struct {
	drafts  map[string]*pricing.DraftBill
	deleted []string
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{drafts: make(map[string]*pricing.DraftBill)}
}

func draftKey(visitID string, domain entities.BillingDomain) string {
	return string(domain) + ":" + visitID
}

func (m *memoryDraftStore) Get(ctx context.Context, visitID string, domain entities.BillingDomain) (*pricing.DraftBill, error) {
	d, ok := m.drafts[draftKey(visitID, domain)]
	if !ok {
		return nil, apperrors.NewNotFoundError("no open draft")
	}
	cp := *d
	cp.Lines = append([]pricing.DraftLine(nil), d.Lines...)
	return &cp, nil
}

func (m *memoryDraftStore) Save(ctx context.Context, draft *pricing.DraftBill) error {
	m.drafts[draftKey(draft.VisitID, draft.Domain)] = draft
	return nil
}

func (m *memoryDraftStore) Delete(ctx context.Context, visitID string, domain entities.BillingDomain) error {
	delete(m.drafts, draftKey(visitID, domain))
	m.deleted = append(m.deleted, draftKey(visitID, domain))
	return nil
}

var _ providers.DraftStore = (*memoryDraftStore)(nil)

// Mocks

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Create(ctx context.Context, item *entities.CatalogItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, id string) (*entities.CatalogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) Search(ctx context.Context, params repositories.CatalogSearchParams) ([]*entities.CatalogItem, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CatalogItem), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) NextNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, creation *repositories.InvoiceCreation) error {
	return m.Called(ctx, creation).Error(0)
}

func (m *MockInvoiceRepository) GetByNumber(ctx context.Context, number string) (*entities.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListByVisit(ctx context.Context, visitID string) ([]*entities.Invoice, error) {
	args := m.Called(ctx, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) MarkPrinted(ctx context.Context, number string, at time.Time) error {
	return m.Called(ctx, number, at).Error(0)
}

func (m *MockInvoiceRepository) HasFormFItems(ctx context.Context, visitID string) (bool, error) {
	args := m.Called(ctx, visitID)
	return args.Bool(0), args.Error(1)
}

type MockVisitRepository struct {
	mock.Mock
}

func (m *MockVisitRepository) Create(ctx context.Context, visit *entities.Visit) error {
	return m.Called(ctx, visit).Error(0)
}

func (m *MockVisitRepository) GetByID(ctx context.Context, id string) (*entities.Visit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Visit), args.Error(1)
}

type MockVisitActionsRepository struct {
	mock.Mock
}

func (m *MockVisitActionsRepository) EnsureExists(ctx context.Context, visitID string) (bool, error) {
	args := m.Called(ctx, visitID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVisitActionsRepository) Get(ctx context.Context, visitID string) (*entities.VisitActions, error) {
	args := m.Called(ctx, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VisitActions), args.Error(1)
}

func (m *MockVisitActionsRepository) SetFormFPrinted(ctx context.Context, visitID string, at time.Time) error {
	return m.Called(ctx, visitID, at).Error(0)
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) Create(ctx context.Context, doctor *entities.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) List(ctx context.Context, referrersOnly bool) ([]*entities.Doctor, error) {
	args := m.Called(ctx, referrersOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *entities.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByVisit(ctx context.Context, visitID string) ([]*entities.Document, error) {
	args := m.Called(ctx, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

type MockIncentiveRepository struct {
	mock.Mock
}

func (m *MockIncentiveRepository) ListByDoctor(ctx context.Context, doctorID string, unpaidOnly bool) ([]*entities.DoctorIncentive, error) {
	args := m.Called(ctx, doctorID, unpaidOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DoctorIncentive), args.Error(1)
}

func (m *MockIncentiveRepository) Summary(ctx context.Context, doctorID string) (*entities.IncentiveSummary, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.IncentiveSummary), args.Error(1)
}

func (m *MockIncentiveRepository) MarkPaid(ctx context.Context, ids []string, at time.Time) error {
	return m.Called(ctx, ids, at).Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) DailyRevenue(ctx context.Context, day time.Time) ([]entities.DailyDomainRevenue, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DailyDomainRevenue), args.Error(1)
}

func (m *MockReportRepository) GSTBreakdown(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.GSTBreakdownRow), args.Error(1)
}

func (m *MockReportRepository) IncentiveSummaries(ctx context.Context) ([]entities.IncentiveSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.IncentiveSummary), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.VisitEvent) error {
	return m.Called(ctx, channel, event).Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.VisitEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.VisitEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) Save(ctx context.Context, visitID, filename string, content io.Reader) (string, int64, error) {
	args := m.Called(ctx, visitID, filename, content)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDocumentStorage) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderInvoice(ctx context.Context, w io.Writer, data providers.InvoicePrint) error {
	args := m.Called(ctx, w, data)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, "%PDF-invoice")
	}
	return args.Error(0)
}

func (m *MockRenderer) RenderFormF(ctx context.Context, w io.Writer, data providers.FormFPrint) error {
	args := m.Called(ctx, w, data)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, "%PDF-formf")
	}
	return args.Error(0)
}
