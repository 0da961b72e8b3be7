package routes

import (
	"net/http"

	"github.com/zatekoja/clinicdesk/backend/internal/api/handlers"
	"github.com/zatekoja/clinicdesk/backend/internal/api/middleware"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	registryHandler  *handlers.RegistryHandler
	billingHandler   *handlers.BillingHandler
	invoiceHandler   *handlers.InvoiceHandler
	documentHandler  *handlers.DocumentHandler
	catalogHandler   *handlers.CatalogHandler
	incentiveHandler *handlers.IncentiveHandler
	reportHandler    *handlers.ReportHandler
	workflowHandler  *handlers.WorkflowHandler
	sseHandler       *handlers.SSEHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	registryHandler *handlers.RegistryHandler,
	billingHandler *handlers.BillingHandler,
	invoiceHandler *handlers.InvoiceHandler,
	documentHandler *handlers.DocumentHandler,
	catalogHandler *handlers.CatalogHandler,
	incentiveHandler *handlers.IncentiveHandler,
	reportHandler *handlers.ReportHandler,
	workflowHandler *handlers.WorkflowHandler,
	sseHandler *handlers.SSEHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		registryHandler:  registryHandler,
		billingHandler:   billingHandler,
		invoiceHandler:   invoiceHandler,
		documentHandler:  documentHandler,
		catalogHandler:   catalogHandler,
		incentiveHandler: incentiveHandler,
		reportHandler:    reportHandler,
		workflowHandler:  workflowHandler,
		sseHandler:       sseHandler,

		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Patients, doctors and visits
	r.mux.HandleFunc("POST /api/patients", r.registryHandler.CreatePatient)
	r.mux.HandleFunc("GET /api/patients/{id}", r.registryHandler.GetPatient)
	r.mux.HandleFunc("POST /api/doctors", r.registryHandler.CreateDoctor)
	r.mux.HandleFunc("GET /api/doctors", r.registryHandler.ListDoctors)
	r.mux.HandleFunc("GET /api/doctors/{id}", r.registryHandler.GetDoctor)
	r.mux.HandleFunc("POST /api/visits", r.registryHandler.CheckIn)
	r.mux.HandleFunc("GET /api/visits/{id}", r.registryHandler.GetVisit)
	r.mux.HandleFunc("POST /api/visits/{id}/consultation", r.registryHandler.CreateConsultationInvoice)

	// Visit workflow
	r.mux.HandleFunc("GET /api/visits/{id}/next-action", r.workflowHandler.NextAction)
	r.mux.HandleFunc("GET /api/stream/visits/{id}", r.sseHandler.StreamVisitUpdates)

	// Documents and printing
	r.mux.HandleFunc("POST /api/visits/{id}/documents", r.documentHandler.Upload)
	r.mux.HandleFunc("GET /api/visits/{id}/documents", r.documentHandler.List)
	r.mux.HandleFunc("GET /api/documents/{id}", r.documentHandler.Download)
	r.mux.HandleFunc("POST /api/visits/{id}/form-f/print", r.invoiceHandler.PrintFormF)

	// Catalog
	r.mux.HandleFunc("POST /api/catalog", r.catalogHandler.CreateItem)
	r.mux.HandleFunc("GET /api/catalog/items/{id}", r.catalogHandler.GetItem)
	r.mux.HandleFunc("GET /api/catalog/{domain}", r.catalogHandler.Search)

	// Draft bills
	r.mux.HandleFunc("POST /api/visits/{id}/bills/{domain}", r.billingHandler.StartDraft)
	r.mux.HandleFunc("GET /api/visits/{id}/bills/{domain}", r.billingHandler.GetDraft)
	r.mux.HandleFunc("DELETE /api/visits/{id}/bills/{domain}", r.billingHandler.DiscardDraft)
	r.mux.HandleFunc("POST /api/visits/{id}/bills/{domain}/items", r.billingHandler.AddItem)
	r.mux.HandleFunc("PATCH /api/visits/{id}/bills/{domain}/items/{itemId}", r.billingHandler.UpdateItem)
	r.mux.HandleFunc("DELETE /api/visits/{id}/bills/{domain}/items/{itemId}", r.billingHandler.RemoveItem)
	r.mux.HandleFunc("PUT /api/visits/{id}/bills/{domain}/discount", r.billingHandler.SetInvoiceDiscount)
	r.mux.HandleFunc("POST /api/visits/{id}/bills/{domain}/finalize", r.billingHandler.Finalize)

	// Invoices
	r.mux.HandleFunc("GET /api/visits/{id}/invoices", r.invoiceHandler.ListVisitInvoices)
	r.mux.HandleFunc("GET /api/invoices/{number}", r.invoiceHandler.GetInvoice)
	r.mux.HandleFunc("POST /api/invoices/{number}/print", r.invoiceHandler.PrintInvoice)

	// Incentives
	r.mux.HandleFunc("GET /api/doctors/{id}/incentives", r.incentiveHandler.ListByDoctor)
	r.mux.HandleFunc("GET /api/doctors/{id}/incentives/summary", r.incentiveHandler.Summary)
	r.mux.HandleFunc("POST /api/incentives/pay", r.incentiveHandler.MarkPaid)

	// Reports
	r.mux.HandleFunc("GET /api/reports/daily", r.reportHandler.Daily)
	r.mux.HandleFunc("GET /api/reports/gst", r.reportHandler.GST)
	r.mux.HandleFunc("GET /api/reports/incentives", r.reportHandler.Incentives)

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits directly on the mux so it sees the matched route pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so preflights never reach the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
