package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/nexserv/invoicing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice represents a persisted invoice. The derived columns (SubTotal,
// TaxAmount, GrandTotal, RemainingAmount, Status) are written exactly as
// the engine computed them; the server never recomputes them on read.
type Invoice struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Number          string             `gorm:"size:20;uniqueIndex;not null" json:"number"`
	ClientID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	InvoiceDate     time.Time          `gorm:"type:date;not null" json:"invoice_date"`
	DueDate         time.Time          `gorm:"type:date;not null" json:"due_date"`
	TaxRatePercent  decimal.Decimal    `gorm:"type:numeric(5,2);not null" json:"tax_rate_percent"`
	DiscountAmount  decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"discount_amount"`
	SubTotal        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"sub_total"`
	TaxAmount       decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"tax_amount"`
	GrandTotal      decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"grand_total"`
	PaidAmount      decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"paid_amount"`
	RemainingAmount decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"remaining_amount"`
	Status          enum.InvoiceStatus `gorm:"default:0" json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Client *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem represents a line item on an invoice
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	Position    int             `gorm:"default:0" json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
