package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pike/internal/clock"
	"github.com/smallbiznis/pike/internal/config"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	"github.com/smallbiznis/pike/internal/invoice/render"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) All(ctx context.Context) (settingsdomain.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(settingsdomain.Settings), args.Error(1)
}

func (m *mockSettings) Get(ctx context.Context, key string, fallback any) (any, error) {
	args := m.Called(ctx, key, fallback)
	return args.Get(0), args.Error(1)
}

func (m *mockSettings) Update(ctx context.Context, partial settingsdomain.Settings) (settingsdomain.Settings, error) {
	args := m.Called(ctx, partial)
	return args.Get(0).(settingsdomain.Settings), args.Error(1)
}

func (m *mockSettings) Reset(ctx context.Context) (settingsdomain.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(settingsdomain.Settings), args.Error(1)
}

type mockLogo struct {
	mock.Mock
}

func (m *mockLogo) Resolve(ctx context.Context, ref string) []byte {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

func (m *mockLogo) Decode(ctx context.Context, encoded string) []byte {
	args := m.Called(ctx, encoded)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, input render.Input) ([]byte, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var issuedAt = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T, settings *mockSettings, logo *mockLogo, renderer render.Renderer) invoicedomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(Params{
		Config:   config.Config{Invoice: config.InvoiceConfig{DueDays: 30}},
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(issuedAt),
		Settings: settings,
		Logo:     logo,
		Renderer: renderer,
	})
}

func baseRequest() invoicedomain.GenerateRequest {
	return invoicedomain.GenerateRequest{
		InvoiceNumber: "INV-001",
		BillToAddress: "Test Customer",
		LineItems:     []invoicedomain.LineItemInput{{Description: ptr("Item"), Rate: ptr(150.0)}},
	}
}

func TestGenerateStampsDatesAndDefaults(t *testing.T) {
	settings := &mockSettings{}
	settings.On("All", mock.Anything).Return(settingsdomain.Settings{
		"from_address":  "Default Corp",
		"payment_terms": "Net 15",
		"tax_percent":   5.0,
		"logo_url":      "",
	}, nil)
	logo := &mockLogo{}
	logo.On("Resolve", mock.Anything, "").Return(nil)
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(in render.Input) bool {
		return in.InvoiceNumber == "INV-001" &&
			in.IssueDate.Equal(issuedAt) &&
			in.DueDate.Equal(issuedAt.AddDate(0, 0, 30)) &&
			in.Computation.FromAddress == "Default Corp" &&
			in.Computation.PaymentTerms == "Net 15" &&
			in.Computation.TaxAmount.String() == "7.5" &&
			in.Logo == nil
	})).Return([]byte("%PDF-1.3 test"), nil)

	doc, err := newTestService(t, settings, logo, renderer).Generate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-001", doc.InvoiceNumber)
	assert.Equal(t, invoicedomain.MimeTypePDF, doc.MimeType)
	assert.Equal(t, []byte("%PDF-1.3 test"), doc.Content)
	assert.NotZero(t, doc.ID)
	assert.False(t, doc.HasLogo)
	assert.Equal(t, "157.5", doc.Computation.Total.String())
	renderer.AssertExpectations(t)
	logo.AssertExpectations(t)
}

func TestGenerateInlineLogoWinsOverSettings(t *testing.T) {
	settings := &mockSettings{}
	settings.On("All", mock.Anything).Return(settingsdomain.Settings{"logo_url": "https://cdn.example.com/logo.png"}, nil)
	logo := &mockLogo{}
	logo.On("Decode", mock.Anything, "aW1n").Return([]byte("img"))
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(in render.Input) bool {
		return string(in.Logo) == "img"
	})).Return([]byte("%PDF"), nil)

	req := baseRequest()
	req.LogoBase64 = ptr("aW1n")
	_, err := newTestService(t, settings, logo, renderer).Generate(context.Background(), req)
	require.NoError(t, err)

	logo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	renderer.AssertExpectations(t)
}

func TestGenerateSucceedsWhenLogoUnavailable(t *testing.T) {
	settings := &mockSettings{}
	settings.On("All", mock.Anything).Return(settingsdomain.Settings{"logo_url": "https://unreachable.invalid/logo.png"}, nil)
	logo := &mockLogo{}
	logo.On("Resolve", mock.Anything, "https://unreachable.invalid/logo.png").Return(nil)
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)

	doc, err := newTestService(t, settings, logo, renderer).Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.False(t, doc.HasLogo)
}

func TestGenerateWithRealRenderer(t *testing.T) {
	settings := &mockSettings{}
	settings.On("All", mock.Anything).Return(settingsdomain.Defaults(), nil)
	logo := &mockLogo{}
	logo.On("Resolve", mock.Anything, "").Return(nil)

	doc, err := newTestService(t, settings, logo, render.NewRenderer()).Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc.Content[:4]))
}

func TestGenerateValidatesRequiredFields(t *testing.T) {
	svc := newTestService(t, &mockSettings{}, &mockLogo{}, &mockRenderer{})

	req := baseRequest()
	req.InvoiceNumber = "  "
	_, err := svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInvoiceNumber)

	req = baseRequest()
	req.BillToAddress = ""
	_, err = svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidBillTo)

	req = baseRequest()
	req.LineItems = nil
	_, err = svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, invoicedomain.ErrEmptyLineItems)
}

func TestGeneratePropagatesSettingsFailure(t *testing.T) {
	settings := &mockSettings{}
	settings.On("All", mock.Anything).Return(nil, errors.New("storage offline"))

	_, err := newTestService(t, settings, &mockLogo{}, &mockRenderer{}).Generate(context.Background(), baseRequest())
	assert.EqualError(t, err, "storage offline")
}

func TestGeneratePropagatesRenderFailure(t *testing.T) {
	settings := &mockSettings{}
	settings.On("All", mock.Anything).Return(settingsdomain.Defaults(), nil)
	logo := &mockLogo{}
	logo.On("Resolve", mock.Anything, "").Return(nil)
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, invoicedomain.ErrRenderFailed)

	_, err := newTestService(t, settings, logo, renderer).Generate(context.Background(), baseRequest())
	assert.ErrorIs(t, err, invoicedomain.ErrRenderFailed)
}
