package domain

import (
	"context"
	"errors"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*Document, error)
}

var (
	ErrInvalidInvoiceNumber = errors.New("invalid_invoice_number")
	ErrInvalidBillTo        = errors.New("invalid_bill_to_address")
	ErrEmptyLineItems       = errors.New("empty_line_items")
	ErrRenderFailed         = errors.New("render_failed")
)
