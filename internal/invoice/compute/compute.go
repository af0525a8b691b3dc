// Package compute derives the money breakdown of an invoice from its request and
// the stored invoice defaults. It performs no I/O.
package compute

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
)

var hundred = decimal.NewFromInt(100)

// Compute resolves text fields against defaults, normalizes line items and derives
// subtotal, tax, total and balance due. Amounts are not rounded.
func Compute(req invoicedomain.GenerateRequest, defaults settingsdomain.Settings) invoicedomain.Computation {
	items := NormalizeLineItems(req.LineItems)

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}

	taxPercent := resolveNumber(req.TaxPercent, defaults, settingsdomain.KeyTaxPercent)
	discount := number(req.Discount)
	shipping := number(req.Shipping)
	amountPaid := number(req.AmountPaid)

	taxAmount := subtotal.Mul(taxPercent).Div(hundred)
	total := subtotal.Add(taxAmount).Sub(discount).Add(shipping)
	balanceDue := total.Sub(amountPaid)

	return invoicedomain.Computation{
		FromAddress:   unescapeNewlines(resolveText(req.FromAddress, defaults, settingsdomain.KeyFromAddress)),
		BillToAddress: unescapeNewlines(req.BillToAddress),
		ShipToAddress: unescapeNewlines(deref(req.ShipToAddress)),
		PurchaseOrder: deref(req.PurchaseOrder),
		PaymentTerms:  unescapeNewlines(resolveText(req.PaymentTerms, defaults, settingsdomain.KeyPaymentTerms)),
		Notes:         unescapeNewlines(resolveText(req.Notes, defaults, settingsdomain.KeyNotes)),
		Terms:         unescapeNewlines(resolveText(req.Terms, defaults, settingsdomain.KeyTerms)),
		LineItems:     items,
		Subtotal:      subtotal,
		TaxPercent:    taxPercent,
		TaxAmount:     taxAmount,
		Discount:      discount,
		Shipping:      shipping,
		Total:         total,
		AmountPaid:    amountPaid,
		BalanceDue:    balanceDue,
	}
}

// NormalizeLineItems fills defaults: empty description, quantity 1, rate 0.
func NormalizeLineItems(inputs []invoicedomain.LineItemInput) []invoicedomain.LineItem {
	items := make([]invoicedomain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		quantity := 1
		if in.Quantity != nil && *in.Quantity >= 1 {
			quantity = *in.Quantity
		}
		rate := number(in.Rate)
		items = append(items, invoicedomain.LineItem{
			Description: deref(in.Description),
			Quantity:    quantity,
			Rate:        rate,
			Amount:      rate.Mul(decimal.NewFromInt(int64(quantity))),
		})
	}
	return items
}

// resolveText applies request > settings > "" precedence.
func resolveText(explicit *string, defaults settingsdomain.Settings, key string) string {
	if explicit != nil {
		return *explicit
	}
	return defaults.String(key)
}

// resolveNumber applies request > settings > 0 precedence.
func resolveNumber(explicit *float64, defaults settingsdomain.Settings, key string) decimal.Decimal {
	if explicit != nil {
		return number(explicit)
	}
	if v, ok := defaults.Float(key); ok {
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

// number converts an optional float, mapping nil and non-finite values to zero.
func number(v *float64) decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// unescapeNewlines turns the two-character sequence `\n` into a line break.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
