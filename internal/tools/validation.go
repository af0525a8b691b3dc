package tools

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single rejected argument.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every argument that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// messages overrides the generic text for specific field and rule pairs.
var messages = map[string]string{
	"invoice_number.required":    `An invoice number is required. Example: "INV-001".`,
	"bill_to_address.required":   "A bill-to address is required for the invoice.",
	"line_items.required":        "At least one line item is required.",
	"line_items.min":             "At least one line item is required.",
	"line_items.*.rate.required": "Each line item must have a rate.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: "arguments", Message: err.Error()}}}
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fieldPath(fe)
		key := indexPattern.ReplaceAllString(field, ".*") + "." + fe.Tag()
		msg, ok := messages[key]
		if !ok {
			msg = describe(fe)
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: msg})
	}
	return out
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	kind := fe.Kind()
	isText := kind == reflect.String
	isList := kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map

	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if isText {
			return fmt.Sprintf("may not be greater than %s characters", fe.Param())
		}
		if isList {
			return fmt.Sprintf("may not have more than %s items", fe.Param())
		}
		return fmt.Sprintf("may not be greater than %s", fe.Param())
	case "min":
		if isText {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if isList {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("may not be greater than %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "base64|datauri":
		return "must be base64 encoded or a data URI"
	case "dive":
		return "contains an invalid item"
	default:
		return "is invalid"
	}
}
