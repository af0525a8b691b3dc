package logo

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"github.com/smallbiznis/pike/internal/observability/metrics"
	"github.com/smallbiznis/pike/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	dataPrefix    = "data:"
	storagePrefix = "storage/"

	sourceInline  = "inline"
	sourceStorage = "storage"
	sourceURL     = "url"
)

// maxLogoBytes caps remote logo downloads.
const maxLogoBytes = 5 << 20

type Params struct {
	fx.In

	Config  config.Config
	Store   storage.Store
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// Resolver turns a logo reference into image bytes. It never fails: any problem
// yields nil so document generation proceeds without a logo.
type Resolver struct {
	store   storage.Store
	http    *resty.Client
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewResolver(p Params) *Resolver {
	timeout := p.Config.Invoice.LogoTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "image/*").
		SetRetryCount(0)

	return &Resolver{
		store:   p.Store,
		http:    client,
		log:     p.Log.Named("logo.resolver"),
		metrics: p.Metrics,
	}
}

// Resolve handles data URIs, storage/ paths and remote URLs.
func (r *Resolver) Resolve(ctx context.Context, ref string) []byte {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil
	case strings.HasPrefix(ref, dataPrefix):
		return r.Decode(ctx, ref)
	case strings.HasPrefix(ref, storagePrefix):
		return r.fromStorage(ctx, strings.TrimPrefix(ref, storagePrefix))
	default:
		return r.fromURL(ctx, ref)
	}
}

// Decode accepts raw base64 or a data URI with a base64 payload.
func (r *Resolver) Decode(ctx context.Context, encoded string) []byte {
	payload := strings.TrimSpace(encoded)
	if strings.HasPrefix(payload, dataPrefix) {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.Contains(payload[:idx], ";base64") {
			r.fallback(ctx, sourceInline, "malformed", errors.New("data uri without base64 payload"))
			return nil
		}
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		r.fallback(ctx, sourceInline, "decode", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func (r *Resolver) fromStorage(ctx context.Context, key string) []byte {
	if r.store == nil {
		return nil
	}
	data, err := r.store.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.fallback(ctx, sourceStorage, "missing", err)
		return nil
	case err != nil:
		r.fallback(ctx, sourceStorage, "storage", err)
		return nil
	case len(data) == 0:
		return nil
	}
	return data
}

func (r *Resolver) fromURL(ctx context.Context, url string) []byte {
	resp, err := r.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		r.fallback(ctx, sourceURL, "unreachable", err)
		return nil
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		r.fallback(ctx, sourceURL, "status", errors.New(resp.Status()))
		return nil
	}

	data, err := readLimited(body, maxLogoBytes)
	if err != nil {
		r.fallback(ctx, sourceURL, "read", err)
		return nil
	}
	if len(data) == 0 {
		r.fallback(ctx, sourceURL, "empty", errors.New("empty response body"))
		return nil
	}
	return data
}

func (r *Resolver) fallback(ctx context.Context, source, reason string, err error) {
	logger.WithContext(ctx, r.log).Warn("logo unavailable, continuing without it",
		zap.String("source", source),
		zap.String("reason", reason),
		zap.Error(err),
	)
	r.metrics.RecordLogoFallback(ctx, source, reason)
}
