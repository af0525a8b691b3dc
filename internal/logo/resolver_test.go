package logo

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image")

func newTestResolver(t *testing.T) (*Resolver, storage.Store) {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	cfg := config.Config{Invoice: config.InvoiceConfig{LogoTimeout: 2 * time.Second}}
	return NewResolver(Params{Config: cfg, Store: store, Log: zap.NewNop()}), store
}

func TestResolveEmpty(t *testing.T) {
	r, _ := newTestResolver(t)
	assert.Nil(t, r.Resolve(context.Background(), ""))
	assert.Nil(t, r.Resolve(context.Background(), "   "))
}

func TestResolveDataURI(t *testing.T) {
	r, _ := newTestResolver(t)
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	assert.Equal(t, pngBytes, r.Resolve(context.Background(), ref))
}

func TestResolveMalformedDataURI(t *testing.T) {
	r, _ := newTestResolver(t)
	assert.Nil(t, r.Resolve(context.Background(), "data:image/png;base64,***"))
	assert.Nil(t, r.Resolve(context.Background(), "data:image/png,plain"))
}

func TestDecodeRawBase64(t *testing.T) {
	r, _ := newTestResolver(t)
	encoded := base64.StdEncoding.EncodeToString(pngBytes)
	assert.Equal(t, pngBytes, r.Decode(context.Background(), encoded))
}

func TestResolveStoragePath(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "logos/brand.png", pngBytes))

	assert.Equal(t, pngBytes, r.Resolve(ctx, "storage/logos/brand.png"))
	assert.Nil(t, r.Resolve(ctx, "storage/logos/missing.png"))
}

func TestResolveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/empty.png":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	r, _ := newTestResolver(t)
	ctx := context.Background()

	assert.Equal(t, pngBytes, r.Resolve(ctx, srv.URL+"/logo.png"))
	assert.Nil(t, r.Resolve(ctx, srv.URL+"/missing.png"))
	assert.Nil(t, r.Resolve(ctx, srv.URL+"/empty.png"))
}

func TestResolveUnreachableURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/logo.png"
	srv.Close()

	r, _ := newTestResolver(t)
	assert.Nil(t, r.Resolve(context.Background(), url))
}

func TestReadLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, maxLogoBytes+1))
	}))
	defer srv.Close()

	r, _ := newTestResolver(t)
	assert.Nil(t, r.Resolve(context.Background(), srv.URL))
}
