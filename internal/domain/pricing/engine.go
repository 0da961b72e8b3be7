// Package pricing computes bill totals for pharmacy, lab, ultrasound and
// consultation billing.
//
// Prices are tax inclusive. Item discounts are applied first, then the
// invoice discount is resolved against the post-item-discount base and
// allocated back across items in proportion to their discounted price.
// GST is extracted from each item's net price, never added on top.
//
// All arithmetic keeps full decimal precision; rounding to two places
// happens only in BillState.Rounded, at display or persistence time.
package pricing

import (
	"github.com/shopspring/decimal"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// MoneyPlaces is the number of decimal places used for display and persistence
const MoneyPlaces = 2

// LineItem is one billable unit handed to the engine
type LineItem struct {
	ItemID         string          `json:"item_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Discount       Discount        `json:"item_discount"`
}

// Price is the line's undiscounted, tax-inclusive price
func (l LineItem) Price() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemState is the computed state of one line item
type ItemState struct {
	ItemID               string          `json:"item_id"`
	Price                decimal.Decimal `json:"price"`
	ItemDiscount         decimal.Decimal `json:"item_discount"`
	DiscountedPrice      decimal.Decimal `json:"discounted_price"`
	InvoiceDiscountShare decimal.Decimal `json:"invoice_discount_share"`
	NetPrice             decimal.Decimal `json:"net_price"`
	GST                  decimal.Decimal `json:"gst"`
	// BasePrice is the net price with GST backed out.
	BasePrice decimal.Decimal `json:"base_price"`
}

// BillState is the computed state of a whole bill
type BillState struct {
	Items                 []ItemState     `json:"items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	TotalItemDiscount     decimal.Decimal `json:"total_item_discount"`
	InvoiceDiscountAmount decimal.Decimal `json:"invoice_discount_amount"`
	DiscountedTotal       decimal.Decimal `json:"discounted_total"`
	GSTTotal              decimal.Decimal `json:"gst_total"`
}

// ComputeBillState prices items and applies invoiceDiscount.
// It has no failure path: an empty list yields an all-zero state.
func ComputeBillState(items []LineItem, invoiceDiscount Discount) BillState {
	state := BillState{
		Items:                 make([]ItemState, len(items)),
		Subtotal:              decimal.Zero,
		TotalItemDiscount:     decimal.Zero,
		InvoiceDiscountAmount: decimal.Zero,
		DiscountedTotal:       decimal.Zero,
		GSTTotal:              decimal.Zero,
	}

	for i, item := range items {
		price := item.Price()
		itemDiscount := item.Discount.Resolve(price)

		state.Items[i] = ItemState{
			ItemID:          item.ItemID,
			Price:           price,
			ItemDiscount:    itemDiscount,
			DiscountedPrice: decimal.Max(decimal.Zero, price.Sub(itemDiscount)),
		}
		state.Subtotal = state.Subtotal.Add(price)
		state.TotalItemDiscount = state.TotalItemDiscount.Add(itemDiscount)
	}

	base := state.Subtotal.Sub(state.TotalItemDiscount)
	state.InvoiceDiscountAmount = invoiceDiscount.Resolve(base)
	state.DiscountedTotal = decimal.Max(decimal.Zero, base.Sub(state.InvoiceDiscountAmount))

	for i := range state.Items {
		is := &state.Items[i]

		share := decimal.Zero
		if base.IsPositive() {
			share = state.InvoiceDiscountAmount.Mul(is.DiscountedPrice).Div(base)
		}
		is.InvoiceDiscountShare = share
		is.NetPrice = decimal.Max(decimal.Zero, is.DiscountedPrice.Sub(share))

		is.GST = ExtractGST(is.NetPrice, items[i].TaxRatePercent)
		is.BasePrice = is.NetPrice.Sub(is.GST)

		state.GSTTotal = state.GSTTotal.Add(is.GST)
	}

	return state
}

// Rounded returns a copy with every amount rounded to MoneyPlaces
func (s BillState) Rounded() BillState {
	out := BillState{
		Items:                 make([]ItemState, len(s.Items)),
		Subtotal:              Round(s.Subtotal),
		TotalItemDiscount:     Round(s.TotalItemDiscount),
		InvoiceDiscountAmount: Round(s.InvoiceDiscountAmount),
		DiscountedTotal:       Round(s.DiscountedTotal),
		GSTTotal:              Round(s.GSTTotal),
	}
	for i, is := range s.Items {
		out.Items[i] = ItemState{
			ItemID:               is.ItemID,
			Price:                Round(is.Price),
			ItemDiscount:         Round(is.ItemDiscount),
			DiscountedPrice:      Round(is.DiscountedPrice),
			InvoiceDiscountShare: Round(is.InvoiceDiscountShare),
			NetPrice:             Round(is.NetPrice),
			GST:                  Round(is.GST),
			BasePrice:            Round(is.BasePrice),
		}
	}
	return out
}

// Check reports a computation error when a clamped total came out negative.
func (s BillState) Check() error {
	if s.DiscountedTotal.IsNegative() {
		return apperrors.NewComputationError("discounted total is negative after clamping")
	}
	if s.GSTTotal.IsNegative() {
		return apperrors.NewComputationError("gst total is negative")
	}
	for _, is := range s.Items {
		if is.NetPrice.IsNegative() {
			return apperrors.NewComputationError("net price of item " + is.ItemID + " is negative after clamping")
		}
	}
	return nil
}

// Round rounds an amount to MoneyPlaces, half away from zero
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ExtractGST returns the tax embedded in a tax-inclusive amount:
// inclusive * rate / (100 + rate).
func ExtractGST(inclusive, ratePercent decimal.Decimal) decimal.Decimal {
	denominator := hundred.Add(ratePercent)
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return inclusive.Mul(ratePercent).Div(denominator)
}
