package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/domain/entity"
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/nexserv/invoicing-api/internal/domain/repository"
	"github.com/nexserv/invoicing-api/pkg/apperror"
	"github.com/nexserv/invoicing-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeStore is an in-memory implementation of the client, invoice and
// invoice item repositories used to exercise the service layer.
type fakeStore struct {
	clients  map[uuid.UUID]*entity.Client
	invoices map[uuid.UUID]*entity.Invoice
	items    map[uuid.UUID][]entity.InvoiceItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:  make(map[uuid.UUID]*entity.Client),
		invoices: make(map[uuid.UUID]*entity.Invoice),
		items:    make(map[uuid.UUID][]entity.InvoiceItem),
	}
}

// ClientRepository

func (f *fakeStore) Create(ctx context.Context, c *entity.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clients[c.ID] = c
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return f.clients[id], nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	for _, c := range f.clients {
		if c.Email != nil && *c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Update(ctx context.Context, c *entity.Client) error {
	f.clients[c.ID] = c
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.clients, id)
	return nil
}

func (f *fakeStore) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var out []entity.Client
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

// fakeInvoiceRepo wraps fakeStore to satisfy InvoiceRepository without
// method name clashes with the client repository.
type fakeInvoiceRepo struct {
	store *fakeStore
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	cp := *inv
	f.store.invoices[inv.ID] = &cp
	return nil
}

func (f *fakeInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := f.store.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	for _, inv := range f.store.invoices {
		if inv.Number == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := f.store.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), f.store.items[id]...)
	return &cp, nil
}

func (f *fakeInvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	cp := *inv
	cp.Items = nil
	f.store.invoices[inv.ID] = &cp
	return nil
}

func (f *fakeInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.invoices, id)
	return nil
}

func (f *fakeInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var out []entity.Invoice
	for _, inv := range f.store.invoices {
		if params.Status != nil && inv.Status != *params.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) ListOutstanding(ctx context.Context, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var out []entity.Invoice
	for _, inv := range f.store.invoices {
		if inv.RemainingAmount.GreaterThan(decimal.Zero) &&
			inv.Status != enum.InvoiceStatusPaid && inv.Status != enum.InvoiceStatusCancelled {
			out = append(out, *inv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	inv, ok := f.store.invoices[id]
	if !ok {
		return nil
	}
	inv.Status = status
	return nil
}

// fakeItemRepo wraps fakeStore to satisfy InvoiceItemRepository.
type fakeItemRepo struct {
	store *fakeStore
}

func (f *fakeItemRepo) CreateBatch(ctx context.Context, items []entity.InvoiceItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if len(items) > 0 {
		id := items[0].InvoiceID
		f.store.items[id] = append(f.store.items[id], items...)
	}
	return nil
}

func (f *fakeItemRepo) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	return f.store.items[invoiceID], nil
}

func (f *fakeItemRepo) DeleteByInvoiceID(ctx context.Context, invoiceID uuid.UUID) error {
	delete(f.store.items, invoiceID)
	return nil
}

func newTestService(t *testing.T) (*InvoiceService, uuid.UUID) {
	t.Helper()
	store := newFakeStore()
	client := &entity.Client{ID: uuid.New(), Name: "Acme Trading"}
	store.clients[client.ID] = client

	svc := NewInvoiceService(&fakeInvoiceRepo{store: store}, &fakeItemRepo{store: store}, store)
	return svc, client.ID
}

func validInput(clientID uuid.UUID) *SaveInvoiceInput {
	return &SaveInvoiceInput{
		ClientID:       clientID,
		InvoiceDate:    time.Now(),
		DueDate:        time.Now().AddDate(0, 0, 30),
		TaxRatePercent: dec("15"),
		DiscountAmount: dec("20"),
		PaidAmount:     decimal.Zero,
		Items: []InvoiceItemInput{
			{Description: "Consulting", Quantity: 2, UnitPrice: dec("100")},
		},
	}
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	svc, clientID := newTestService(t)

	result, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)

	inv := result.Invoice
	assert.True(t, strings.HasPrefix(inv.Number, "INV-"))
	assert.Equal(t, "200", inv.SubTotal.String())
	assert.Equal(t, "30", inv.TaxAmount.String())
	assert.Equal(t, "210", inv.GrandTotal.String())
	assert.Equal(t, "210", inv.RemainingAmount.String())
	assert.Equal(t, enum.InvoiceStatusPending, inv.Status)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Consulting", inv.Items[0].Description)
	assert.Empty(t, result.Warnings)
}

func TestInvoiceService_CreateInvoice_ValidationBlocksSave(t *testing.T) {
	svc, clientID := newTestService(t)

	input := validInput(clientID)
	input.Items[0].Quantity = 0
	input.TaxRatePercent = dec("150")

	_, err := svc.CreateInvoice(context.Background(), input)
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, 422, appErr.Code)

	var gotFields []string
	for _, fe := range appErr.Errors {
		gotFields = append(gotFields, fe.Field)
	}
	assert.Contains(t, gotFields, "items[0].quantity")
	assert.Contains(t, gotFields, "tax_rate_percent")
}

func TestInvoiceService_CreateInvoice_UnknownClient(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput(uuid.New())
	_, err := svc.CreateInvoice(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestInvoiceService_CreateInvoice_DuplicateNumber(t *testing.T) {
	svc, clientID := newTestService(t)

	input := validInput(clientID)
	input.Number = "INV-00042"
	_, err := svc.CreateInvoice(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.CreateInvoice(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
}

func TestInvoiceService_CreateInvoice_DueDateWarning(t *testing.T) {
	svc, clientID := newTestService(t)

	input := validInput(clientID)
	input.DueDate = time.Now().AddDate(0, 0, -5)

	result, err := svc.CreateInvoice(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "due_date", result.Warnings[0].Field)
}

func TestInvoiceService_UpdateInvoice_Recomputes(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)

	input := validInput(clientID)
	input.Number = created.Invoice.Number
	input.Items = []InvoiceItemInput{
		{Description: "Consulting", Quantity: 3, UnitPrice: dec("100")},
		{Description: "Support retainer", Quantity: 1, UnitPrice: dec("50")},
	}

	result, err := svc.UpdateInvoice(context.Background(), created.Invoice.ID, input)
	require.NoError(t, err)

	inv := result.Invoice
	assert.Equal(t, "350", inv.SubTotal.String())
	assert.Equal(t, "52.5", inv.TaxAmount.String())
	assert.Equal(t, "382.5", inv.GrandTotal.String())
	require.Len(t, inv.Items, 2)
	assert.Equal(t, 0, inv.Items[0].Position)
	assert.Equal(t, 1, inv.Items[1].Position)
}

func TestInvoiceService_UpdateInvoice_OverrideSurvivesEdit(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)
	require.NoError(t, svc.MarkOverdue(context.Background(), created.Invoice.ID))

	input := validInput(clientID)
	input.Number = created.Invoice.Number
	result, err := svc.UpdateInvoice(context.Background(), created.Invoice.ID, input)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, result.Invoice.Status)
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)
	id := created.Invoice.ID

	inv, err := svc.RecordPayment(context.Background(), id, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, "110", inv.RemainingAmount.String())
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, inv.Status)

	inv, err = svc.RecordPayment(context.Background(), id, dec("110"))
	require.NoError(t, err)
	assert.True(t, inv.RemainingAmount.IsZero())
	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)
}

func TestInvoiceService_RecordPayment_Overpayment(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)

	inv, err := svc.RecordPayment(context.Background(), created.Invoice.ID, dec("300"))
	require.NoError(t, err)
	assert.True(t, inv.RemainingAmount.IsZero())
	assert.Equal(t, "300", inv.PaidAmount.String())
	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)
}

func TestInvoiceService_RecordPayment_Invalid(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), created.Invoice.ID, dec("0"))
	assert.Error(t, err)
	_, err = svc.RecordPayment(context.Background(), created.Invoice.ID, dec("-5"))
	assert.Error(t, err)
}

func TestInvoiceService_SetPaidAmount_RefundDegradesStatus(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)
	id := created.Invoice.ID

	_, err = svc.RecordPayment(context.Background(), id, dec("210"))
	require.NoError(t, err)

	inv, err := svc.SetPaidAmount(context.Background(), id, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, inv.Status)

	inv, err = svc.SetPaidAmount(context.Background(), id, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPending, inv.Status)
}

func TestInvoiceService_CancelInvoice(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)
	id := created.Invoice.ID

	require.NoError(t, svc.CancelInvoice(context.Background(), id))

	inv, err := svc.GetInvoice(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusCancelled, inv.Status)

	// terminal: cancelling again fails, payments are rejected
	assert.Error(t, svc.CancelInvoice(context.Background(), id))
	_, err = svc.RecordPayment(context.Background(), id, dec("50"))
	assert.Error(t, err)
}

func TestInvoiceService_MarkOverdue(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)
	id := created.Invoice.ID

	require.NoError(t, svc.MarkOverdue(context.Background(), id))

	inv, err := svc.GetInvoice(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, inv.Status)

	// the override clears once the invoice is fully paid
	inv, err = svc.RecordPayment(context.Background(), id, dec("210"))
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, inv.Status)

	// and cannot be applied to a paid invoice
	assert.Error(t, svc.MarkOverdue(context.Background(), id))
}

func TestInvoiceService_DeleteInvoice(t *testing.T) {
	svc, clientID := newTestService(t)

	created, err := svc.CreateInvoice(context.Background(), validInput(clientID))
	require.NoError(t, err)
	id := created.Invoice.ID

	require.NoError(t, svc.DeleteInvoice(context.Background(), id))

	_, err = svc.GetInvoice(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}
