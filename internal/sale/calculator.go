package sale

import "github.com/google/uuid"

// VATRate is the statutory value-added tax rate applied on the
// post-discount amount.
const VATRate = 0.12

// Item is one requested product line of a sale.
type Item struct {
	ProductID uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64   `json:"unitPrice" validate:"gte=0"`
}

// ItemTotals carries the computed monetary figures for one line.
type ItemTotals struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
	Subtotal  float64   `json:"subtotal"` // pre-discount, pre-VAT
	Discount  float64   `json:"discount"`
	VAT       float64   `json:"vat"`
	Final     float64   `json:"final"` // post-discount, post-VAT
}

// OrderTotals carries the computed order-level figures plus per-item
// breakdowns. Sum of item Final amounts equals Total up to
// floating-point tolerance.
type OrderTotals struct {
	Subtotal        float64      `json:"subtotal"`
	Discount        float64      `json:"discount"`
	DiscountPercent float64      `json:"discountPercent"`
	VAT             float64      `json:"vat"`
	Total           float64      `json:"total"`
	Items           []ItemTotals `json:"items"`
}

// ComputeOrder computes subtotal, discount, VAT and total for a sale.
// The order-level discount is prorated across items proportionally to
// each item's share of the pre-discount subtotal, not recomputed per
// item. VAT applies to the post-discount amount. No rounding happens
// here; amounts are rounded at presentation only.
//
// When discountEligible is true but discountPercent is not positive,
// the statutory default rate is applied instead of failing.
func ComputeOrder(items []Item, discountEligible bool, discountPercent float64) OrderTotals {
	totals := OrderTotals{Items: make([]ItemTotals, 0, len(items))}

	for _, it := range items {
		totals.Subtotal += float64(it.Quantity) * it.UnitPrice
	}

	if discountEligible {
		if discountPercent <= 0 {
			discountPercent = defaultDiscountPercent
		}
		totals.DiscountPercent = discountPercent
		totals.Discount = totals.Subtotal * (discountPercent / 100)
	}

	totals.VAT = (totals.Subtotal - totals.Discount) * VATRate
	totals.Total = totals.Subtotal - totals.Discount + totals.VAT

	for _, it := range items {
		line := ItemTotals{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  float64(it.Quantity) * it.UnitPrice,
		}
		if discountEligible && totals.Subtotal > 0 {
			// prorate by the item's share of the order subtotal
			line.Discount = line.Subtotal * (totals.Discount / totals.Subtotal)
		}
		line.VAT = (line.Subtotal - line.Discount) * VATRate
		line.Final = line.Subtotal - line.Discount + line.VAT
		totals.Items = append(totals.Items, line)
	}

	return totals
}

// defaultDiscountPercent mirrors model.DefaultDiscountPercent without
// importing the persistence layer into the pure core.
const defaultDiscountPercent = 20.0
