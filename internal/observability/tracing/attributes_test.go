package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSecrets(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/mcp"),
		attribute.String("forge.token", "secret"),
		attribute.String("logo_base64", "iVBORw0"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeAttributesTruncatesLongValues(t *testing.T) {
	attrs := SafeAttributes(attribute.String("error.detail", strings.Repeat("x", 1000)))
	require.Len(t, attrs, 1)
	assert.Len(t, attrs[0].Value.AsString(), maxAttributeLength)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	err := SafeError(errors.New(strings.Repeat("y", 400)))
	require.Error(t, err)
	assert.Len(t, err.Error(), maxAttributeLength)
}
