// Package domain contains the invoice document model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MimeTypePDF is the content type of rendered documents.
const MimeTypePDF = "application/pdf"

// LineItemInput is a caller-supplied line. Nil fields take their defaults.
type LineItemInput struct {
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Rate        *float64 `json:"rate" validate:"required,gte=0"`
}

// GenerateRequest carries everything needed to produce one invoice document.
// Optional fields are pointers so an explicit zero can override a stored default.
type GenerateRequest struct {
	InvoiceNumber string          `json:"invoice_number" validate:"required,max=100"`
	FromAddress   *string         `json:"from_address,omitempty" validate:"omitempty,max=500"`
	BillToAddress string          `json:"bill_to_address" validate:"required,max=500"`
	ShipToAddress *string         `json:"ship_to_address,omitempty" validate:"omitempty,max=500"`
	PurchaseOrder *string         `json:"purchase_order,omitempty" validate:"omitempty,max=100"`
	PaymentTerms  *string         `json:"payment_terms,omitempty" validate:"omitempty,max=100"`
	Notes         *string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Terms         *string         `json:"terms,omitempty" validate:"omitempty,max=1000"`
	LineItems     []LineItemInput `json:"line_items" validate:"required,min=1,dive"`
	TaxPercent    *float64        `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Discount      *float64        `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Shipping      *float64        `json:"shipping,omitempty" validate:"omitempty,gte=0"`
	AmountPaid    *float64        `json:"amount_paid,omitempty" validate:"omitempty,gte=0"`
	LogoBase64    *string         `json:"logo_base64,omitempty" validate:"omitempty,base64|datauri"`
}

// LineItem is a normalized line with its computed amount.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Computation is the resolved text and money breakdown of a document.
type Computation struct {
	FromAddress   string `json:"from_address"`
	BillToAddress string `json:"bill_to_address"`
	ShipToAddress string `json:"ship_to_address"`
	PurchaseOrder string `json:"purchase_order"`
	PaymentTerms  string `json:"payment_terms"`
	Notes         string `json:"notes"`
	Terms         string `json:"terms"`

	LineItems []LineItem `json:"line_items"`

	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// Document is a rendered invoice.
type Document struct {
	ID            snowflake.ID
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Computation   Computation
	HasLogo       bool
	Content       []byte
	MimeType      string
}
