package pricing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// DiscountKind tags the variant held by a Discount
type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

// Discount is None, Percent(value) or Amount(value).
// The zero value is None.
type Discount struct {
	kind  DiscountKind
	value decimal.Decimal
}

// NoDiscount returns the None variant
func NoDiscount() Discount {
	return Discount{kind: DiscountNone}
}

// Percent returns a discount of value percent of its base
func Percent(value decimal.Decimal) Discount {
	return Discount{kind: DiscountPercent, value: value}
}

// Amount returns a flat discount of value
func Amount(value decimal.Decimal) Discount {
	return Discount{kind: DiscountAmount, value: value}
}

// ParseDiscount builds a Discount from its wire form. An empty kind means None.
func ParseDiscount(kind string, value decimal.Decimal) (Discount, error) {
	switch DiscountKind(strings.ToLower(strings.TrimSpace(kind))) {
	case "", DiscountNone:
		return NoDiscount(), nil
	case DiscountPercent:
		return Percent(value), nil
	case DiscountAmount:
		return Amount(value), nil
	default:
		return Discount{}, apperrors.NewValidationError(fmt.Sprintf("unknown discount type %q", kind))
	}
}

// Kind returns the variant tag
func (d Discount) Kind() DiscountKind {
	if d.kind == "" {
		return DiscountNone
	}
	return d.kind
}

// Value returns the percent or amount; zero for None
func (d Discount) Value() decimal.Decimal {
	if d.Kind() == DiscountNone {
		return decimal.Zero
	}
	return d.value
}

// Resolve returns the money amount this discount takes off base.
// Percent is relative to base, Amount ignores base, None is zero.
// Negative values are not rejected here.
func (d Discount) Resolve(base decimal.Decimal) decimal.Decimal {
	switch d.Kind() {
	case DiscountPercent:
		return base.Mul(d.value).Div(hundred)
	case DiscountAmount:
		return d.value
	case DiscountNone:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// Validate rejects negative values and percentages above 100.
func (d Discount) Validate() error {
	switch d.Kind() {
	case DiscountNone:
		return nil
	case DiscountPercent:
		if d.value.IsNegative() || d.value.GreaterThan(hundred) {
			return apperrors.NewValidationError("percent discount must be between 0 and 100")
		}
	case DiscountAmount:
		if d.value.IsNegative() {
			return apperrors.NewValidationError("amount discount must not be negative")
		}
	}
	return nil
}

// Exceeds reports whether an Amount discount takes off more than base.
// Percent discounts never exceed their base once validated.
func (d Discount) Exceeds(base decimal.Decimal) bool {
	return d.Kind() == DiscountAmount && d.value.GreaterThan(base)
}

// Equal reports whether both discounts are the same variant with the same value
func (d Discount) Equal(other Discount) bool {
	return d.Kind() == other.Kind() && d.Value().Equal(other.Value())
}

// String renders the discount for logs and printed invoices
func (d Discount) String() string {
	switch d.Kind() {
	case DiscountPercent:
		return d.value.String() + "%"
	case DiscountAmount:
		return d.value.StringFixed(2)
	default:
		return "none"
	}
}

type discountJSON struct {
	Type  DiscountKind    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// MarshalJSON encodes the discount as {"type": ..., "value": ...}
func (d Discount) MarshalJSON() ([]byte, error) {
	return json.Marshal(discountJSON{Type: d.Kind(), Value: d.Value()})
}

// UnmarshalJSON decodes {"type": ..., "value": ...}; null leaves None
func (d *Discount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NoDiscount()
		return nil
	}
	var raw discountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDiscount(string(raw.Type), raw.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
