package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var (
	invoiceColumns = columns(
		"id", "invoice_number", "visit_id", "domain", "referring_doctor_id",
		"total_amount", "item_discount_total", "discount_type", "discount_value", "discount_amount",
		"discounted_total", "gst_amount", "printed", "printed_at", "created_at",
	)
	invoiceItemColumns = columns(
		"id", "invoice_id", "position", "item_id", "name", "hsn_code", "quantity", "unit_price",
		"item_discount_type", "item_discount_value", "tax_rate_percent", "final_price", "gst_amount", "form_f_needed",
	)
)

// InvoiceAdapter implements InvoiceRepository
type InvoiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.InvoiceRepository = (*InvoiceAdapter)(nil)

// NewInvoiceAdapter creates a new invoice adapter
func NewInvoiceAdapter(client *postgres.Client) *InvoiceAdapter {
	return &InvoiceAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// NextNumber draws from invoice_number_seq. Numbers burnt by a failed
// finalization are not reused.
func (a *InvoiceAdapter) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := a.client.DB().QueryRowContext(ctx, "SELECT nextval('invoice_number_seq')").Scan(&n); err != nil {
		return 0, queryError("failed to allocate invoice number", err)
	}
	return n, nil
}

// Create writes the invoice, its items, the stock decrements and the
// incentive in one transaction. Nothing is written if any step fails.
func (a *InvoiceAdapter) Create(ctx context.Context, c *repositories.InvoiceCreation) (err error) {
	if c == nil || c.Invoice == nil {
		return apperrors.NewValidationError("invoice is required")
	}
	inv := c.Invoice

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return queryError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = a.insertHeader(ctx, tx, inv); err != nil {
		return err
	}
	if err = a.insertItems(ctx, tx, inv); err != nil {
		return err
	}
	for _, d := range c.StockDecrements {
		if err = a.decrementStock(ctx, tx, d); err != nil {
			return err
		}
	}
	if c.Incentive != nil {
		if err = a.insertIncentive(ctx, tx, c.Incentive); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return queryError("failed to commit invoice", err)
	}
	return nil
}

func (a *InvoiceAdapter) insertHeader(ctx context.Context, tx *sql.Tx, inv *entities.Invoice) error {
	record := goqu.Record{
		"id":                  inv.ID,
		"invoice_number":      inv.InvoiceNumber,
		"visit_id":            inv.VisitID,
		"domain":              inv.Domain,
		"referring_doctor_id": inv.ReferringDoctorID,
		"total_amount":        inv.TotalAmount,
		"item_discount_total": inv.ItemDiscountTotal,
		"discount_type":       inv.DiscountType,
		"discount_value":      inv.DiscountValue,
		"discount_amount":     inv.DiscountAmount,
		"discounted_total":    inv.DiscountedTotal,
		"gst_amount":          inv.GSTAmount,
		"printed":             inv.Printed,
		"printed_at":          inv.PrintedAt,
		"created_at":          inv.CreatedAt,
	}

	query, args, err := a.db.Insert("invoices").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("visit %s already has a %s invoice", inv.VisitID, inv.Domain))
		}
		return queryError("failed to insert invoice", err)
	}
	return nil
}

func (a *InvoiceAdapter) insertItems(ctx context.Context, tx *sql.Tx, inv *entities.Invoice) error {
	if len(inv.Items) == 0 {
		return nil
	}

	rows := make([]interface{}, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.InvoiceID = inv.ID
		it.Position = i + 1
		rows[i] = goqu.Record{
			"id":                  it.ID,
			"invoice_id":          it.InvoiceID,
			"position":            it.Position,
			"item_id":             it.ItemID,
			"name":                it.Name,
			"hsn_code":            it.HSNCode,
			"quantity":            it.Quantity,
			"unit_price":          it.UnitPrice,
			"item_discount_type":  it.ItemDiscountType,
			"item_discount_value": it.ItemDiscountValue,
			"tax_rate_percent":    it.TaxRatePercent,
			"final_price":         it.FinalPrice,
			"gst_amount":          it.GSTAmount,
			"form_f_needed":       it.FormFNeeded,
		}
	}

	query, args, err := a.db.Insert("invoice_items").Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to insert invoice items", err)
	}
	return nil
}

// decrementStock fails with a conflict when stock fell below the billed
// quantity since the item was added to the draft.
func (a *InvoiceAdapter) decrementStock(ctx context.Context, tx *sql.Tx, d repositories.StockDecrement) error {
	query, args, err := a.db.Update("catalog_items").
		Set(goqu.Record{
			"stock":      goqu.L("stock - ?", d.Quantity),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": d.ItemID}, goqu.C("stock").Gte(d.Quantity)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return queryError("failed to decrement stock", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return queryError("failed to get rows affected", err)
	}
	if affected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("insufficient stock for item %s", d.ItemID))
	}
	return nil
}

func (a *InvoiceAdapter) insertIncentive(ctx context.Context, tx *sql.Tx, inc *entities.DoctorIncentive) error {
	record := goqu.Record{
		"id":               inc.ID,
		"doctor_id":        inc.DoctorID,
		"invoice_id":       inc.InvoiceID,
		"invoice_number":   inc.InvoiceNumber,
		"incentive_amount": inc.IncentiveAmount,
		"paid":             false,
		"payment_date":     nil,
		"created_at":       inc.CreatedAt,
	}

	query, args, err := a.db.Insert("doctor_incentives").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to accrue incentive", err)
	}
	return nil
}

// GetByNumber retrieves an invoice and its items
func (a *InvoiceAdapter) GetByNumber(ctx context.Context, number string) (*entities.Invoice, error) {
	query, args, err := a.db.Select(invoiceColumns...).From("invoices").
		Where(goqu.Ex{"invoice_number": number}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	inv, err := scanInvoice(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("invoice %s not found", number), "failed to load invoice")
	}

	items, err := a.loadItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items[inv.ID]
	if inv.Items == nil {
		inv.Items = []entities.InvoiceItem{}
	}
	return inv, nil
}

// ListByVisit returns a visit's invoices with their items, oldest first
func (a *InvoiceAdapter) ListByVisit(ctx context.Context, visitID string) ([]*entities.Invoice, error) {
	query, args, err := a.db.Select(invoiceColumns...).From("invoices").
		Where(goqu.Ex{"visit_id": visitID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("failed to list invoices", err)
	}
	defer rows.Close()

	invoices := []*entities.Invoice{}
	ids := []string{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, queryError("failed to scan invoice", err)
		}
		invoices = append(invoices, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("failed to list invoices", err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	items, err := a.loadItems(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		inv.Items = items[inv.ID]
		if inv.Items == nil {
			inv.Items = []entities.InvoiceItem{}
		}
	}
	return invoices, nil
}

func (a *InvoiceAdapter) loadItems(ctx context.Context, invoiceIDs ...string) (map[string][]entities.InvoiceItem, error) {
	query, args, err := a.db.Select(invoiceItemColumns...).From("invoice_items").
		Where(goqu.Ex{"invoice_id": invoiceIDs}).
		Order(goqu.I("invoice_id").Asc(), goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("failed to load invoice items", err)
	}
	defer rows.Close()

	out := make(map[string][]entities.InvoiceItem)
	for rows.Next() {
		var it entities.InvoiceItem
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.Position, &it.ItemID, &it.Name, &it.HSNCode, &it.Quantity, &it.UnitPrice,
			&it.ItemDiscountType, &it.ItemDiscountValue, &it.TaxRatePercent, &it.FinalPrice, &it.GSTAmount, &it.FormFNeeded,
		); err != nil {
			return nil, queryError("failed to scan invoice item", err)
		}
		out[it.InvoiceID] = append(out[it.InvoiceID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("failed to load invoice items", err)
	}
	return out, nil
}

// MarkPrinted sets the printed flag. Reprinting keeps the first print time.
func (a *InvoiceAdapter) MarkPrinted(ctx context.Context, number string, at time.Time) error {
	query, args, err := a.db.Update("invoices").
		Set(goqu.Record{
			"printed":    true,
			"printed_at": goqu.L("COALESCE(printed_at, ?)", at),
		}).
		Where(goqu.Ex{"invoice_number": number}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return queryError("failed to mark invoice printed", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return queryError("failed to get rows affected", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("invoice %s not found", number))
	}
	return nil
}

// HasFormFItems checks the visit's ultrasound lines against the scan catalog
func (a *InvoiceAdapter) HasFormFItems(ctx context.Context, visitID string) (bool, error) {
	query, args, err := a.db.From(goqu.T("invoice_items").As("ii")).
		Join(goqu.T("invoices").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("ii.invoice_id")))).
		LeftJoin(goqu.T("catalog_items").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("ii.item_id")))).
		Select(goqu.COUNT("*")).
		Where(
			goqu.I("i.visit_id").Eq(visitID),
			goqu.I("i.domain").Eq(string(entities.BillingDomainUltrasound)),
			goqu.Or(
				goqu.I("ii.form_f_needed").IsTrue(),
				goqu.I("c.form_f_needed").IsTrue(),
			),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var n int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, queryError("failed to check form f items", err)
	}
	return n > 0, nil
}

func scanInvoice(row rowScanner) (*entities.Invoice, error) {
	inv := &entities.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.VisitID, &inv.Domain, &inv.ReferringDoctorID,
		&inv.TotalAmount, &inv.ItemDiscountTotal, &inv.DiscountType, &inv.DiscountValue, &inv.DiscountAmount,
		&inv.DiscountedTotal, &inv.GSTAmount, &inv.Printed, &inv.PrintedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}
