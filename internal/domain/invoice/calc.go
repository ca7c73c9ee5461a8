package invoice

import (
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeCharges applies the tax rate and flat discount to a subtotal.
// The grand total is floored at zero: a discount larger than subtotal plus
// tax never produces a negative total. Inputs are assumed validated; the
// function is total over its numeric domain and never fails.
func ComputeCharges(subTotal, taxRatePercent, discountAmount decimal.Decimal) (taxAmount, grandTotal decimal.Decimal) {
	taxAmount = subTotal.Mul(taxRatePercent).Div(hundred)
	grandTotal = subTotal.Add(taxAmount).Sub(discountAmount)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}
	return taxAmount, grandTotal
}

// RemainingAmount returns the unpaid balance against the grand total,
// clamped at zero. Overpayment is a permitted input and yields zero.
func RemainingAmount(grandTotal, paidAmount decimal.Decimal) decimal.Decimal {
	remaining := grandTotal.Sub(paidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ResolveStatus maps the payment position and the current status to the
// invoice status. Cancelled is terminal. Overdue is an operator override
// that persists until the invoice is paid. Neither is ever derived
// automatically; they only enter through an explicit status change.
func ResolveStatus(grandTotal, paidAmount decimal.Decimal, current enum.InvoiceStatus) enum.InvoiceStatus {
	if current == enum.InvoiceStatusCancelled {
		return enum.InvoiceStatusCancelled
	}
	if current == enum.InvoiceStatusOverdue && paidAmount.LessThan(grandTotal) {
		return enum.InvoiceStatusOverdue
	}
	if paidAmount.GreaterThanOrEqual(grandTotal) && grandTotal.GreaterThan(decimal.Zero) {
		return enum.InvoiceStatusPaid
	}
	if paidAmount.GreaterThan(decimal.Zero) && paidAmount.LessThan(grandTotal) {
		return enum.InvoiceStatusPartiallyPaid
	}
	return enum.InvoiceStatusPending
}
