package service

import (
	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/domain/entity"
	"github.com/nexserv/invoicing-api/internal/domain/invoice"
)

// draftFromEntity rebuilds the editable draft from a persisted invoice so
// the engine can re-derive totals after a mutation.
func draftFromEntity(inv *entity.Invoice) *invoice.Draft {
	items := make([]invoice.LineItem, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = invoice.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	draft := &invoice.Draft{
		Number:         inv.Number,
		ClientID:       inv.ClientID,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		Items:          items,
		TaxRatePercent: inv.TaxRatePercent,
		DiscountAmount: inv.DiscountAmount,
		PaidAmount:     inv.PaidAmount,
		Status:         inv.Status,
	}
	draft.Recompute()
	return draft
}

// applyDraft writes the draft's inputs and rounded derived fields onto the
// entity. Rounding to 2 decimal places happens only here, at the
// persistence boundary.
func applyDraft(inv *entity.Invoice, draft *invoice.Draft) {
	totals := draft.Totals.Rounded()

	inv.Number = draft.Number
	inv.ClientID = draft.ClientID
	inv.InvoiceDate = draft.InvoiceDate
	inv.DueDate = draft.DueDate
	inv.TaxRatePercent = draft.TaxRatePercent
	inv.DiscountAmount = draft.DiscountAmount.Round(2)
	inv.SubTotal = totals.SubTotal
	inv.TaxAmount = totals.TaxAmount
	inv.GrandTotal = totals.GrandTotal
	inv.PaidAmount = draft.PaidAmount.Round(2)
	inv.RemainingAmount = totals.RemainingAmount
	inv.Status = draft.Status
}

// itemsFromDraft converts draft line items to entities, preserving the
// insertion order through the position column.
func itemsFromDraft(invoiceID uuid.UUID, draft *invoice.Draft) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, len(draft.Items))
	for i, item := range draft.Items {
		items[i] = entity.InvoiceItem{
			InvoiceID:   invoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Round(2),
			Total:       item.Total.Round(2),
			Position:    i,
		}
	}
	return items
}
