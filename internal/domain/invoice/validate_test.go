package invoice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(errs []apperror.FieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func newValidDraft(t *testing.T) *Draft {
	d := newTestDraft(t)
	d.DueDate = time.Now().AddDate(0, 0, 30)
	return d
}

func TestValidate_ValidDraft(t *testing.T) {
	d := newValidDraft(t)
	assert.Empty(t, Validate(d))
}

func TestValidate_RequiredFields(t *testing.T) {
	d := newValidDraft(t)
	d.Number = ""
	d.ClientID = uuid.Nil
	d.DueDate = time.Time{}

	got := fields(Validate(d))
	assert.Contains(t, got, "number")
	assert.Contains(t, got, "client_id")
	assert.Contains(t, got, "due_date")
}

func TestValidate_ItemFields(t *testing.T) {
	d := newValidDraft(t)
	d.AddItem()

	got := fields(Validate(d))
	assert.Contains(t, got, "items[1].description")
	assert.Contains(t, got, "items[1].quantity")
	assert.Contains(t, got, "items[1].unit_price")
	assert.NotContains(t, got, "items[0].description")
}

func TestValidate_NumericRanges(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *Draft)
		wantField string
	}{
		{"tax rate above 100", func(d *Draft) { d.TaxRatePercent = dec("101") }, "tax_rate_percent"},
		{"negative tax rate", func(d *Draft) { d.TaxRatePercent = dec("-1") }, "tax_rate_percent"},
		{"negative discount", func(d *Draft) { d.DiscountAmount = dec("-5") }, "discount_amount"},
		{"negative paid amount", func(d *Draft) { d.PaidAmount = dec("-5") }, "paid_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newValidDraft(t)
			tt.mutate(d)
			assert.Contains(t, fields(Validate(d)), tt.wantField)
		})
	}
}

func TestValidate_BoundaryRatesAreValid(t *testing.T) {
	d := newValidDraft(t)

	d.SetTaxRatePercent(dec("0"))
	assert.Empty(t, Validate(d))

	d.SetTaxRatePercent(dec("100"))
	assert.Empty(t, Validate(d))
}

func TestWarnings_DueDateBeforeInvoiceDate(t *testing.T) {
	d := newValidDraft(t)
	require.Empty(t, Warnings(d))

	d.DueDate = d.InvoiceDate.AddDate(0, 0, -1)
	warns := Warnings(d)
	require.Len(t, warns, 1)
	assert.Equal(t, "due_date", warns[0].Field)
	// a warning never blocks the save
	assert.Empty(t, Validate(d))
}
