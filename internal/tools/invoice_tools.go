package tools

import (
	"context"
	"encoding/base64"

	"github.com/mark3labs/mcp-go/mcp"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
)

const ToolGenerateInvoicePDF = "generate-invoice-pdf"

type generateInvoiceResult struct {
	PDFBase64     string `json:"pdf_base64"`
	MimeType      string `json:"mime_type"`
	InvoiceNumber string `json:"invoice_number"`
}

func (s *Server) registerInvoiceTools() {
	s.add(mcp.NewTool(ToolGenerateInvoicePDF,
		mcp.WithDescription("Generates a PDF invoice from the provided invoice data.\nReturns the PDF as a base64-encoded string in a structured response."),
		mcp.WithString("invoice_number", mcp.Required(), mcp.MaxLength(100),
			mcp.Description(`The invoice number (e.g., "INV-001").`)),
		mcp.WithString("from_address", mcp.MaxLength(500),
			mcp.Description("The sender/company address (who is this from?).")),
		mcp.WithString("bill_to_address", mcp.Required(), mcp.MaxLength(500),
			mcp.Description("The billing address for the customer.")),
		mcp.WithString("ship_to_address", mcp.MaxLength(500),
			mcp.Description("Optional shipping address if different from billing.")),
		mcp.WithString("purchase_order", mcp.MaxLength(100),
			mcp.Description("Optional PO number reference.")),
		mcp.WithString("payment_terms", mcp.MaxLength(100),
			mcp.Description(`Payment terms (e.g., "Net 30", "Due on Receipt").`)),
		mcp.WithString("notes", mcp.MaxLength(1000),
			mcp.Description("Additional notes to display on the invoice.")),
		mcp.WithString("terms", mcp.MaxLength(1000),
			mcp.Description("Terms and conditions for the invoice.")),
		mcp.WithArray("line_items", mcp.Required(),
			mcp.Description("Array of line items for the invoice."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{"type": "string", "description": "Description of item/service."},
					"quantity":    map[string]any{"type": "integer", "description": "Quantity of items.", "default": 1},
					"rate":        map[string]any{"type": "number", "description": "Rate/price per item."},
				},
				"required": []string{"rate"},
			})),
		mcp.WithNumber("tax_percent", mcp.Min(0), mcp.Max(100),
			mcp.Description("Tax percentage to apply (e.g., 8.25 for 8.25%).")),
		mcp.WithNumber("discount", mcp.Min(0),
			mcp.Description("Discount amount to subtract from total.")),
		mcp.WithNumber("shipping", mcp.Min(0),
			mcp.Description("Shipping cost to add to total.")),
		mcp.WithNumber("amount_paid", mcp.Min(0),
			mcp.Description("Amount already paid (subtracted from balance due).")),
		mcp.WithString("logo_base64",
			mcp.Description("Base64-encoded company logo image.")),
	), s.generateInvoicePDF)
}

func (s *Server) generateInvoicePDF(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in invoicedomain.GenerateRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}

	doc, err := s.invoices.Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	return jsonResult(generateInvoiceResult{
		PDFBase64:     base64.StdEncoding.EncodeToString(doc.Content),
		MimeType:      doc.MimeType,
		InvoiceNumber: doc.InvoiceNumber,
	})
}
