package domain

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// StorageKey is the blob key holding the persisted settings document.
const StorageKey = "invoice-settings.json"

const (
	KeyFromAddress  = "from_address"
	KeyPaymentTerms = "payment_terms"
	KeyNotes        = "notes"
	KeyTerms        = "terms"
	KeyLogoURL      = "logo_url"
	KeyTaxPercent   = "tax_percent"
)

// Keys lists the recognized settings keys.
var Keys = []string{KeyFromAddress, KeyPaymentTerms, KeyNotes, KeyTerms, KeyLogoURL, KeyTaxPercent}

var ErrInvalidSettings = errors.New("invalid_settings")

// Settings is a flat mapping of setting name to a string or numeric value.
type Settings map[string]any

// Defaults returns a fresh copy of the built-in defaults.
func Defaults() Settings {
	return Settings{
		KeyFromAddress:  "",
		KeyPaymentTerms: "Net 30",
		KeyNotes:        "",
		KeyTerms:        "",
		KeyLogoURL:      "",
		KeyTaxPercent:   float64(0),
	}
}

// Merge returns base overlaid with the non-nil values of override.
func Merge(base, override Settings) Settings {
	out := make(Settings, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	return Merge(s, nil)
}

// String returns the value of key rendered as a string, or "" when unset.
func (s Settings) String(key string) string {
	switch v := s[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		if n, ok := Number(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return ""
	}
}

// Float returns the numeric value of key, or 0 when unset or not numeric.
func (s Settings) Float(key string) (float64, bool) {
	return Number(s[key])
}

// Number coerces JSON-ish scalars into a finite float64.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Service persists invoice defaults.
type Service interface {
	All(ctx context.Context) (Settings, error)
	Get(ctx context.Context, key string, fallback any) (any, error)
	Update(ctx context.Context, partial Settings) (Settings, error)
	Reset(ctx context.Context) (Settings, error)
}
