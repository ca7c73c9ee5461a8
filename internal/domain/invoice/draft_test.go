package invoice

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDraft(t *testing.T) *Draft {
	t.Helper()
	d := NewDraft(uuid.New(), dec("15"))
	require.NoError(t, d.SetItemDescription(0, "Consulting"))
	require.NoError(t, d.SetItemQuantity(0, 2))
	require.NoError(t, d.SetItemUnitPrice(0, dec("100")))
	return d
}

func TestNewDraft(t *testing.T) {
	d := NewDraft(uuid.New(), dec("15"))

	assert.Len(t, d.Items, 1)
	assert.Equal(t, enum.InvoiceStatusPending, d.Status)
	assert.True(t, strings.HasPrefix(d.Number, "INV-"))
	assert.Len(t, d.Number, 9)
	assert.True(t, d.Totals.SubTotal.IsZero())
}

func TestDraft_Charges(t *testing.T) {
	d := newTestDraft(t)
	d.SetDiscountAmount(dec("20"))

	assert.True(t, dec("200").Equal(d.Totals.SubTotal), "subTotal = %s", d.Totals.SubTotal)
	assert.True(t, dec("30").Equal(d.Totals.TaxAmount), "taxAmount = %s", d.Totals.TaxAmount)
	assert.True(t, dec("210").Equal(d.Totals.GrandTotal), "grandTotal = %s", d.Totals.GrandTotal)
}

func TestDraft_AddItem(t *testing.T) {
	d := newTestDraft(t)
	d.AddItem()

	require.Len(t, d.Items, 2)
	assert.True(t, d.Items[1].Total.IsZero())
	// the zero item contributes nothing
	assert.True(t, dec("200").Equal(d.Totals.SubTotal))

	require.NoError(t, d.SetItemQuantity(1, 3))
	require.NoError(t, d.SetItemUnitPrice(1, dec("50")))
	assert.True(t, dec("350").Equal(d.Totals.SubTotal))
}

func TestDraft_RemoveItem(t *testing.T) {
	d := newTestDraft(t)
	d.AddItem()
	require.NoError(t, d.SetItemQuantity(1, 1))
	require.NoError(t, d.SetItemUnitPrice(1, dec("50")))

	require.NoError(t, d.RemoveItem(1))
	assert.Len(t, d.Items, 1)
	assert.True(t, dec("200").Equal(d.Totals.SubTotal))
}

func TestDraft_RemoveLastItemIsNoop(t *testing.T) {
	d := newTestDraft(t)

	require.NoError(t, d.RemoveItem(0))
	assert.Len(t, d.Items, 1)
	assert.Equal(t, "Consulting", d.Items[0].Description)
}

func TestDraft_RemoveItemOutOfRange(t *testing.T) {
	d := newTestDraft(t)

	assert.Error(t, d.RemoveItem(5))
	assert.Error(t, d.RemoveItem(-1))
}

func TestDraft_DescriptionDoesNotAffectTotals(t *testing.T) {
	d := newTestDraft(t)
	before := d.Totals

	require.NoError(t, d.SetItemDescription(0, "Renamed"))
	assert.Equal(t, before, d.Totals)
}

// The subtotal is always the exact sum of quantity x unit price over all
// items, independent of the order of edits.
func TestDraft_SubTotalOrderIndependent(t *testing.T) {
	build := func(edit func(d *Draft)) decimal.Decimal {
		d := NewDraft(uuid.New(), dec("0"))
		edit(d)
		return d.Totals.SubTotal
	}

	a := build(func(d *Draft) {
		d.SetItemQuantity(0, 2)
		d.SetItemUnitPrice(0, dec("100"))
		d.AddItem()
		d.SetItemQuantity(1, 3)
		d.SetItemUnitPrice(1, dec("9.99"))
	})
	b := build(func(d *Draft) {
		d.AddItem()
		d.SetItemUnitPrice(1, dec("9.99"))
		d.SetItemQuantity(1, 3)
		d.SetItemUnitPrice(0, dec("100"))
		d.SetItemQuantity(0, 2)
	})

	assert.True(t, a.Equal(b), "a = %s, b = %s", a, b)
	assert.True(t, dec("229.97").Equal(a))
}

func TestDraft_RecomputeIdempotent(t *testing.T) {
	d := newTestDraft(t)
	d.SetDiscountAmount(dec("20"))
	d.SetPaidAmount(dec("100"))

	first := d.Recompute()
	second := d.Recompute()

	assert.Equal(t, first, second)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, d.Status)
}

func TestDraft_PaymentLifecycle(t *testing.T) {
	d := newTestDraft(t)
	d.SetDiscountAmount(dec("20"))
	require.True(t, dec("210").Equal(d.Totals.GrandTotal))

	d.SetPaidAmount(dec("100"))
	assert.True(t, dec("110").Equal(d.Totals.RemainingAmount))
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, d.Status)

	d.SetPaidAmount(dec("210"))
	assert.True(t, d.Totals.RemainingAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusPaid, d.Status)

	// overpayment
	d.SetPaidAmount(dec("300"))
	assert.True(t, d.Totals.RemainingAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusPaid, d.Status)
}

func TestDraft_CancelledSurvivesRecompute(t *testing.T) {
	d := newTestDraft(t)
	d.Status = enum.InvoiceStatusCancelled

	d.SetPaidAmount(dec("500"))
	d.Recompute()
	assert.Equal(t, enum.InvoiceStatusCancelled, d.Status)
}

func TestTotals_Rounded(t *testing.T) {
	d := NewDraft(uuid.New(), dec("7.5"))
	require.NoError(t, d.SetItemQuantity(0, 1))
	require.NoError(t, d.SetItemUnitPrice(0, dec("99.99")))

	rounded := d.Totals.Rounded()
	assert.Equal(t, "7.50", rounded.TaxAmount.StringFixed(2))
	assert.Equal(t, "107.49", rounded.GrandTotal.StringFixed(2))
	// internal values stay unrounded
	assert.True(t, dec("7.49925").Equal(d.Totals.TaxAmount))
}
