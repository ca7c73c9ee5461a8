package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/application/service"
	"github.com/nexserv/invoicing-api/internal/config"
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/nexserv/invoicing-api/internal/domain/invoice"
	"github.com/nexserv/invoicing-api/internal/domain/repository"
	"github.com/nexserv/invoicing-api/internal/presentation/http/dto/response"
	"github.com/nexserv/invoicing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	invoiceCfg     *config.InvoiceConfig
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, invoiceCfg *config.InvoiceConfig) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, invoiceCfg: invoiceCfg}
}

type invoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type saveInvoiceRequest struct {
	ClientID       uuid.UUID            `json:"client_id"`
	Number         string               `json:"number"`
	InvoiceDate    string               `json:"invoice_date"`
	DueDate        string               `json:"due_date"`
	TaxRatePercent decimal.Decimal      `json:"tax_rate_percent"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	PaidAmount     decimal.Decimal      `json:"paid_amount"`
	Items          []invoiceItemRequest `json:"items" binding:"required"`
}

func (r *saveInvoiceRequest) toInput() (*service.SaveInvoiceInput, error) {
	var invoiceDate, dueDate time.Time
	var err error

	if r.InvoiceDate != "" {
		if invoiceDate, err = time.Parse(dateLayout, r.InvoiceDate); err != nil {
			return nil, err
		}
	}
	if r.DueDate != "" {
		if dueDate, err = time.Parse(dateLayout, r.DueDate); err != nil {
			return nil, err
		}
	}

	items := make([]service.InvoiceItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = service.InvoiceItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	return &service.SaveInvoiceInput{
		ClientID:       r.ClientID,
		Number:         r.Number,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		TaxRatePercent: r.TaxRatePercent,
		DiscountAmount: r.DiscountAmount,
		PaidAmount:     r.PaidAmount,
		Items:          items,
	}, nil
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.InvoiceStatus(statusInt)
			params.Status = &status
		}
	}

	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		if clientID, err := uuid.Parse(clientIDStr); err == nil {
			params.ClientID = &clientID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse(dateLayout, startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse(dateLayout, endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// ListOutstanding handles listing invoices with an unpaid balance
func (h *InvoiceHandler) ListOutstanding(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	result, err := h.invoiceService.ListOutstanding(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Outstanding invoices retrieved successfully", result)
}

// NewDraft returns a blank invoice draft seeded with the configured
// defaults: a fresh number, one empty line item and the default tax rate
func (h *InvoiceHandler) NewDraft(c *gin.Context) {
	var clientID uuid.UUID
	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		parsed, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		clientID = parsed
	}

	draft := invoice.NewDraft(clientID, h.invoiceCfg.DefaultTaxRatePercent)
	response.OK(c, "Invoice draft created", gin.H{
		"draft":    draft,
		"currency": h.invoiceCfg.CurrencyLabel,
	})
}

// Create handles creating an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		response.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithWarnings(c, 201, "Invoice created successfully", result.Invoice, result.Warnings)
}

// Get handles getting a single invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", inv)
}

// Update handles replacing the editable fields of an invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		response.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	result, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithWarnings(c, 200, "Invoice updated successfully", result.Invoice, result.Warnings)
}

// RecordPayment handles adding a payment to an invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	inv, err := h.invoiceService.RecordPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", inv)
}

// SetPaidAmount handles replacing the cumulative paid amount outright
func (h *InvoiceHandler) SetPaidAmount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req struct {
		PaidAmount decimal.Decimal `json:"paid_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	inv, err := h.invoiceService.SetPaidAmount(c.Request.Context(), id, req.PaidAmount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Paid amount updated successfully", inv)
}

// Cancel handles cancelling an invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.CancelInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled successfully", nil)
}

// MarkOverdue handles applying the overdue override
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.MarkOverdue(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice marked as overdue", nil)
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
