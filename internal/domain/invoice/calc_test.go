package invoice

import (
	"testing"

	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeCharges(t *testing.T) {
	tests := []struct {
		name           string
		subTotal       string
		taxRatePercent string
		discountAmount string
		wantTax        string
		wantGrand      string
	}{
		{"standard tax and discount", "200", "15", "20", "30", "210"},
		{"zero tax", "200", "0", "0", "0", "200"},
		{"zero subtotal", "0", "15", "0", "0", "0"},
		{"full rate", "100", "100", "0", "100", "200"},
		{"discount exceeds total clamps to zero", "100", "10", "500", "10", "0"},
		{"discount exactly equals total", "100", "0", "100", "0", "0"},
		{"fractional rate keeps precision", "99.99", "7.5", "0", "7.49925", "107.48925"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, grand := ComputeCharges(dec(tt.subTotal), dec(tt.taxRatePercent), dec(tt.discountAmount))
			assert.True(t, dec(tt.wantTax).Equal(tax), "tax = %s, want %s", tax, tt.wantTax)
			assert.True(t, dec(tt.wantGrand).Equal(grand), "grand = %s, want %s", grand, tt.wantGrand)
		})
	}
}

func TestRemainingAmount(t *testing.T) {
	tests := []struct {
		name       string
		grandTotal string
		paidAmount string
		want       string
	}{
		{"partial payment", "210", "100", "110"},
		{"exact payment", "210", "210", "0"},
		{"overpayment clamps to zero", "210", "300", "0"},
		{"no payment", "210", "0", "210"},
		{"zero total", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingAmount(dec(tt.grandTotal), dec(tt.paidAmount))
			assert.True(t, dec(tt.want).Equal(got), "remaining = %s, want %s", got, tt.want)
		})
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name       string
		grandTotal string
		paidAmount string
		current    enum.InvoiceStatus
		want       enum.InvoiceStatus
	}{
		{"unpaid stays pending", "210", "0", enum.InvoiceStatusPending, enum.InvoiceStatusPending},
		{"partial payment", "210", "100", enum.InvoiceStatusPending, enum.InvoiceStatusPartiallyPaid},
		{"exact payment", "210", "210", enum.InvoiceStatusPartiallyPaid, enum.InvoiceStatusPaid},
		{"overpayment is paid", "210", "300", enum.InvoiceStatusPending, enum.InvoiceStatusPaid},
		{"zero total never paid", "0", "0", enum.InvoiceStatusPending, enum.InvoiceStatusPending},
		{"cancelled is terminal", "210", "210", enum.InvoiceStatusCancelled, enum.InvoiceStatusCancelled},
		{"cancelled ignores payments", "210", "100", enum.InvoiceStatusCancelled, enum.InvoiceStatusCancelled},
		{"overdue persists while unpaid", "210", "100", enum.InvoiceStatusOverdue, enum.InvoiceStatusOverdue},
		{"overdue clears once paid", "210", "210", enum.InvoiceStatusOverdue, enum.InvoiceStatusPaid},
		{"refund degrades paid to partial", "210", "100", enum.InvoiceStatusPaid, enum.InvoiceStatusPartiallyPaid},
		{"refund degrades paid to pending", "210", "0", enum.InvoiceStatusPaid, enum.InvoiceStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStatus(dec(tt.grandTotal), dec(tt.paidAmount), tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Along the happy path the status never skips or reverses: as paidAmount
// grows from 0 to grandTotal it walks Pending, PartiallyPaid, Paid.
func TestResolveStatus_HappyPathMonotonic(t *testing.T) {
	grand := dec("210")
	status := enum.InvoiceStatusPending
	seen := []enum.InvoiceStatus{}

	for paid := decimal.Zero; paid.LessThanOrEqual(grand); paid = paid.Add(dec("30")) {
		status = ResolveStatus(grand, paid, status)
		if len(seen) == 0 || seen[len(seen)-1] != status {
			seen = append(seen, status)
		}
	}

	assert.Equal(t, []enum.InvoiceStatus{
		enum.InvoiceStatusPending,
		enum.InvoiceStatusPartiallyPaid,
		enum.InvoiceStatusPaid,
	}, seen)
}
