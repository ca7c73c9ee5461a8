package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/nexserv/invoicing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// LineItem is one billable entry on an invoice. Total is derived from
// Quantity and UnitPrice and is never set independently.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// Totals holds the derived amounts of a draft. They are recomputed in full
// from the draft inputs on every mutation, never patched incrementally.
type Totals struct {
	SubTotal        decimal.Decimal `json:"sub_total"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// Draft is one invoice being edited by a single session. All amounts are
// plain decimals in a single implied currency.
type Draft struct {
	Number         string             `json:"number"`
	ClientID       uuid.UUID          `json:"client_id"`
	InvoiceDate    time.Time          `json:"invoice_date"`
	DueDate        time.Time          `json:"due_date"`
	Items          []LineItem         `json:"items"`
	TaxRatePercent decimal.Decimal    `json:"tax_rate_percent"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	Status         enum.InvoiceStatus `json:"status"`
	Totals         Totals             `json:"totals"`
}

// NewDraft creates a draft with a fresh number, a single zero-valued item
// and Pending status.
func NewDraft(clientID uuid.UUID, taxRatePercent decimal.Decimal) *Draft {
	d := &Draft{
		Number:         NewNumber(),
		ClientID:       clientID,
		InvoiceDate:    time.Now(),
		Items:          []LineItem{{}},
		TaxRatePercent: taxRatePercent,
		DiscountAmount: decimal.Zero,
		PaidAmount:     decimal.Zero,
		Status:         enum.InvoiceStatusPending,
	}
	d.Recompute()
	return d
}

// AddItem appends a zero-valued line item.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, LineItem{})
	d.Recompute()
}

// RemoveItem removes the item at index. An invoice always retains at least
// one item, so removal on a single-item list is a no-op, not an error.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.Items) {
		return apperror.NewBadRequestError("Item index out of range")
	}
	if len(d.Items) == 1 {
		return nil
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	d.Recompute()
	return nil
}

// SetItemDescription updates an item's description. Descriptions never
// affect totals, so no recompute is needed.
func (d *Draft) SetItemDescription(index int, description string) error {
	if index < 0 || index >= len(d.Items) {
		return apperror.NewBadRequestError("Item index out of range")
	}
	d.Items[index].Description = description
	return nil
}

// SetItemQuantity updates an item's quantity and re-derives its total.
func (d *Draft) SetItemQuantity(index int, quantity int) error {
	if index < 0 || index >= len(d.Items) {
		return apperror.NewBadRequestError("Item index out of range")
	}
	d.Items[index].Quantity = quantity
	d.Recompute()
	return nil
}

// SetItemUnitPrice updates an item's unit price and re-derives its total.
func (d *Draft) SetItemUnitPrice(index int, unitPrice decimal.Decimal) error {
	if index < 0 || index >= len(d.Items) {
		return apperror.NewBadRequestError("Item index out of range")
	}
	d.Items[index].UnitPrice = unitPrice
	d.Recompute()
	return nil
}

// SetTaxRatePercent updates the tax rate and re-derives the totals.
func (d *Draft) SetTaxRatePercent(rate decimal.Decimal) {
	d.TaxRatePercent = rate
	d.Recompute()
}

// SetDiscountAmount updates the flat discount and re-derives the totals.
func (d *Draft) SetDiscountAmount(amount decimal.Decimal) {
	d.DiscountAmount = amount
	d.Recompute()
}

// SetPaidAmount replaces the cumulative paid amount and re-derives the
// totals. Reducing it is an explicit correction by the caller; the engine
// treats it as a plain new input.
func (d *Draft) SetPaidAmount(amount decimal.Decimal) {
	d.PaidAmount = amount
	d.Recompute()
}

// Recompute re-derives every item total, the subtotal, charges, remaining
// balance and status from the current inputs. It touches derived fields
// only and is safe to call redundantly.
func (d *Draft) Recompute() Totals {
	subTotal := decimal.Zero
	for i := range d.Items {
		item := &d.Items[i]
		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subTotal = subTotal.Add(item.Total)
	}

	taxAmount, grandTotal := ComputeCharges(subTotal, d.TaxRatePercent, d.DiscountAmount)

	d.Totals = Totals{
		SubTotal:        subTotal,
		TaxAmount:       taxAmount,
		GrandTotal:      grandTotal,
		RemainingAmount: RemainingAmount(grandTotal, d.PaidAmount),
	}
	d.Status = ResolveStatus(grandTotal, d.PaidAmount, d.Status)

	return d.Totals
}

// Rounded returns the totals rounded to 2 decimal places for presentation
// and persistence. Internal arithmetic keeps full precision.
func (t Totals) Rounded() Totals {
	return Totals{
		SubTotal:        t.SubTotal.Round(2),
		TaxAmount:       t.TaxAmount.Round(2),
		GrandTotal:      t.GrandTotal.Round(2),
		RemainingAmount: t.RemainingAmount.Round(2),
	}
}
