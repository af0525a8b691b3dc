package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
)

const (
	ToolGetInvoiceSettings    = "get-invoice-settings"
	ToolUpdateInvoiceSettings = "update-invoice-settings"
	ToolResetInvoiceSettings  = "reset-invoice-settings"
)

type updateSettingsRequest struct {
	FromAddress  *string  `json:"from_address,omitempty" validate:"omitempty,max=500"`
	PaymentTerms *string  `json:"payment_terms,omitempty" validate:"omitempty,max=100"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Terms        *string  `json:"terms,omitempty" validate:"omitempty,max=1000"`
	LogoURL      *string  `json:"logo_url,omitempty" validate:"omitempty,max=500"`
	TaxPercent   *float64 `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// partial keeps only the provided fields.
func (r updateSettingsRequest) partial() settingsdomain.Settings {
	out := settingsdomain.Settings{}
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set(settingsdomain.KeyFromAddress, r.FromAddress)
	set(settingsdomain.KeyPaymentTerms, r.PaymentTerms)
	set(settingsdomain.KeyNotes, r.Notes)
	set(settingsdomain.KeyTerms, r.Terms)
	set(settingsdomain.KeyLogoURL, r.LogoURL)
	if r.TaxPercent != nil {
		out[settingsdomain.KeyTaxPercent] = *r.TaxPercent
	}
	return out
}

type settingsResult struct {
	Success  bool                    `json:"success"`
	Settings settingsdomain.Settings `json:"settings"`
}

func (s *Server) registerSettingsTools() {
	s.add(mcp.NewTool(ToolGetInvoiceSettings,
		mcp.WithDescription("Returns the current invoice default settings (from address, payment terms, notes, terms, logo URL and tax percent)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.getInvoiceSettings)

	s.add(mcp.NewTool(ToolUpdateInvoiceSettings,
		mcp.WithDescription("Updates the invoice default settings.\nOnly provide the fields you want to update. Omitted fields will keep their current values."),
		mcp.WithString("from_address", mcp.MaxLength(500),
			mcp.Description("Default sender/company address for invoices.")),
		mcp.WithString("payment_terms", mcp.MaxLength(100),
			mcp.Description(`Default payment terms (e.g., "Net 30", "Due on Receipt").`)),
		mcp.WithString("notes", mcp.MaxLength(1000),
			mcp.Description("Default notes to display on invoices.")),
		mcp.WithString("terms", mcp.MaxLength(1000),
			mcp.Description("Default terms and conditions for invoices.")),
		mcp.WithString("logo_url", mcp.MaxLength(500),
			mcp.Description(`URL to the company logo, or "storage/path/to/logo.png" for stored files.`)),
		mcp.WithNumber("tax_percent", mcp.Min(0), mcp.Max(100),
			mcp.Description("Default tax percentage (e.g., 8.25 for 8.25%).")),
		mcp.WithIdempotentHintAnnotation(true),
	), s.updateInvoiceSettings)

	s.add(mcp.NewTool(ToolResetInvoiceSettings,
		mcp.WithDescription("Restores the built-in invoice default settings, discarding every stored value."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.resetInvoiceSettings)
}

func (s *Server) getInvoiceSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := s.settings.All(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(settings)
}

func (s *Server) updateInvoiceSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in updateSettingsRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}

	updated, err := s.settings.Update(ctx, in.partial())
	if err != nil {
		return nil, err
	}
	return jsonResult(settingsResult{Success: true, Settings: updated})
}

func (s *Server) resetInvoiceSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := s.settings.Reset(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(settingsResult{Success: true, Settings: settings})
}
