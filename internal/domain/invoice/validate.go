package invoice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Validate collects per-field validation errors for a draft. A non-empty
// result blocks the save action; the caller decides how to surface it.
// Validation never panics or throws, and the calculation functions remain
// total regardless of what the inputs look like.
func Validate(d *Draft) []apperror.FieldError {
	var errs []apperror.FieldError

	if d.Number == "" {
		errs = append(errs, apperror.FieldError{Field: "number", Message: "Invoice number is required"})
	}
	if d.ClientID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "client_id", Message: "Client is required"})
	}
	if d.DueDate.IsZero() {
		errs = append(errs, apperror.FieldError{Field: "due_date", Message: "Due date is required"})
	}
	if len(d.Items) == 0 {
		errs = append(errs, apperror.FieldError{Field: "items", Message: "At least one item is required"})
	}
	for i, item := range d.Items {
		if item.Description == "" {
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "Description is required",
			})
		}
		if item.Quantity <= 0 {
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "Quantity must be greater than zero",
			})
		}
		if item.UnitPrice.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].unit_price", i),
				Message: "Unit price must be greater than zero",
			})
		}
	}
	if d.TaxRatePercent.IsNegative() || d.TaxRatePercent.GreaterThan(hundred) {
		errs = append(errs, apperror.FieldError{Field: "tax_rate_percent", Message: "Tax rate must be between 0 and 100"})
	}
	if d.DiscountAmount.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "discount_amount", Message: "Discount cannot be negative"})
	}
	if d.PaidAmount.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "paid_amount", Message: "Paid amount cannot be negative"})
	}

	return errs
}

// Warnings returns non-blocking validation notes. A due date before the
// invoice date is flagged but does not prevent saving.
func Warnings(d *Draft) []apperror.FieldError {
	var warns []apperror.FieldError

	if !d.DueDate.IsZero() && !d.InvoiceDate.IsZero() && d.DueDate.Before(d.InvoiceDate) {
		warns = append(warns, apperror.FieldError{Field: "due_date", Message: "Due date precedes invoice date"})
	}

	return warns
}
