package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/domain/entity"
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/nexserv/invoicing-api/internal/domain/invoice"
	"github.com/nexserv/invoicing-api/internal/domain/repository"
	"github.com/nexserv/invoicing-api/pkg/apperror"
	"github.com/nexserv/invoicing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// numberAttempts bounds the retries when a generated invoice number
// collides with an existing one.
const numberAttempts = 5

// InvoiceService handles invoice-related operations. The create and edit
// flows share the same draft engine; the only difference between them is
// whether a persisted identifier exists yet.
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.InvoiceItemRepository
	clientRepo  repository.ClientRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	clientRepo repository.ClientRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		clientRepo:  clientRepo,
	}
}

// InvoiceItemInput represents one line item in a save request
type InvoiceItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// SaveInvoiceInput represents the input shared by create and update
type SaveInvoiceInput struct {
	ClientID       uuid.UUID
	Number         string // empty on create: a number is generated
	InvoiceDate    time.Time
	DueDate        time.Time
	TaxRatePercent decimal.Decimal
	DiscountAmount decimal.Decimal
	PaidAmount     decimal.Decimal
	Items          []InvoiceItemInput
}

// InvoiceResult carries the saved invoice plus non-blocking validation
// warnings for the operator.
type InvoiceResult struct {
	Invoice  *entity.Invoice       `json:"invoice"`
	Warnings []apperror.FieldError `json:"warnings,omitempty"`
}

// CreateInvoice validates and persists a new invoice. All derived fields
// are recomputed by the draft engine before the write; the stored record
// is exactly what the engine produced.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *SaveInvoiceInput) (*InvoiceResult, error) {
	if err := s.ensureClient(ctx, input.ClientID); err != nil {
		return nil, err
	}

	draft, err := s.draftFromInput(input, enum.InvoiceStatusPending)
	if err != nil {
		return nil, err
	}

	generated := input.Number == ""
	if generated {
		draft.Number = invoice.NewNumber()
	}

	if errs := invoice.Validate(draft); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	// The engine does not guarantee number uniqueness; collisions are
	// resolved here by regenerating before the write.
	for attempt := 0; ; attempt++ {
		existing, err := s.invoiceRepo.GetByNumber(ctx, draft.Number)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
		if !generated || attempt >= numberAttempts {
			return nil, apperror.NewConflictError("Invoice number already in use")
		}
		draft.Number = invoice.NewNumber()
	}

	inv := &entity.Invoice{}
	applyDraft(inv, draft)

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	items := itemsFromDraft(inv.ID, draft)
	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}

	saved, err := s.invoiceRepo.GetWithItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: saved, Warnings: invoice.Warnings(draft)}, nil
}

// UpdateInvoice replaces the editable inputs of an invoice and re-derives
// everything else. The current status is carried into the resolver so
// operator overrides survive edits.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, input *SaveInvoiceInput) (*InvoiceResult, error) {
	existing, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	if err := s.ensureClient(ctx, input.ClientID); err != nil {
		return nil, err
	}

	draft, err := s.draftFromInput(input, existing.Status)
	if err != nil {
		return nil, err
	}
	if draft.Number == "" {
		draft.Number = existing.Number
	}

	if errs := invoice.Validate(draft); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if draft.Number != existing.Number {
		other, err := s.invoiceRepo.GetByNumber(ctx, draft.Number)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, apperror.NewConflictError("Invoice number already in use")
		}
	}

	applyDraft(existing, draft)
	if err := s.invoiceRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	// Items are replaced wholesale; insertion order is preserved through
	// the position column.
	if err := s.itemRepo.DeleteByInvoiceID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.itemRepo.CreateBatch(ctx, itemsFromDraft(id, draft)); err != nil {
		return nil, err
	}

	saved, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: saved, Warnings: invoice.Warnings(draft)}, nil
}

// GetInvoice retrieves an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return inv, nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// ListOutstanding returns invoices with an unpaid balance
func (s *InvoiceService) ListOutstanding(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.ListOutstanding(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// RecordPayment adds a payment to the invoice's cumulative paid amount and
// re-derives the remaining balance and status.
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entity.Invoice, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}

	inv, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if inv.Status == enum.InvoiceStatusCancelled {
		return nil, apperror.NewBadRequestError("Cannot record a payment on a cancelled invoice")
	}

	draft := draftFromEntity(inv)
	draft.SetPaidAmount(draft.PaidAmount.Add(amount))

	applyDraft(inv, draft)
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// SetPaidAmount replaces the cumulative paid amount outright. This is the
// correction/refund path; status re-derives downward if the amount drops.
func (s *InvoiceService) SetPaidAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entity.Invoice, error) {
	if amount.IsNegative() {
		return nil, apperror.NewBadRequestError("Paid amount cannot be negative")
	}

	inv, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if inv.Status == enum.InvoiceStatusCancelled {
		return nil, apperror.NewBadRequestError("Cannot adjust payments on a cancelled invoice")
	}

	draft := draftFromEntity(inv)
	draft.SetPaidAmount(amount)

	applyDraft(inv, draft)
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// CancelInvoice marks an invoice as cancelled. Cancelled is terminal: it
// is never left and never overwritten by recomputation.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperror.NewNotFoundError("Invoice")
	}
	if inv.Status == enum.InvoiceStatusCancelled {
		return apperror.NewBadRequestError("Invoice is already cancelled")
	}

	return s.invoiceRepo.UpdateStatus(ctx, id, enum.InvoiceStatusCancelled)
}

// MarkOverdue applies the operator-driven overdue override. It persists
// until the invoice is paid; it is never derived from the due date.
func (s *InvoiceService) MarkOverdue(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperror.NewNotFoundError("Invoice")
	}
	switch inv.Status {
	case enum.InvoiceStatusCancelled:
		return apperror.NewBadRequestError("Cannot mark a cancelled invoice overdue")
	case enum.InvoiceStatusPaid:
		return apperror.NewBadRequestError("Cannot mark a paid invoice overdue")
	}

	return s.invoiceRepo.UpdateStatus(ctx, id, enum.InvoiceStatusOverdue)
}

// DeleteInvoice removes an invoice and its items
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperror.NewNotFoundError("Invoice")
	}

	if err := s.itemRepo.DeleteByInvoiceID(ctx, id); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}

func (s *InvoiceService) ensureClient(ctx context.Context, clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return nil // reported as a field error by the draft validator
	}
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}
	return nil
}

func (s *InvoiceService) draftFromInput(input *SaveInvoiceInput, status enum.InvoiceStatus) (*invoice.Draft, error) {
	invoiceDate := input.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	items := make([]invoice.LineItem, len(input.Items))
	for i, item := range input.Items {
		items[i] = invoice.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	draft := &invoice.Draft{
		Number:         input.Number,
		ClientID:       input.ClientID,
		InvoiceDate:    invoiceDate,
		DueDate:        input.DueDate,
		Items:          items,
		TaxRatePercent: input.TaxRatePercent,
		DiscountAmount: input.DiscountAmount,
		PaidAmount:     input.PaidAmount,
		Status:         status,
	}
	draft.Recompute()
	return draft, nil
}
