package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestCleanKey(t *testing.T) {
	cases := map[string]string{
		"invoice-settings.json": "invoice-settings.json",
		"/logos/brand.png":      "logos/brand.png",
		"logos//./brand.png":    "logos/brand.png",
		`logos\brand.png`:       "logos/brand.png",
		"logos/../brand.png":    "brand.png",
	}
	for in, want := range cases {
		got, err := CleanKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "  ", "..", "../etc/passwd", "/"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists(ctx, "missing.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "logos/brand.png", []byte("v1")))
	require.NoError(t, store.Put(ctx, "logos/brand.png", []byte("v2")))

	data, err := store.Get(ctx, "logos/brand.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	ok, err = store.Exists(ctx, "logos/brand.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "logos/brand.png"))
	require.NoError(t, store.Delete(ctx, "logos/brand.png"))
	_, err = store.Get(ctx, "logos/brand.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStore(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestDiskStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../outside.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDatabaseStore(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "blobs.db")), &gorm.Config{})
	require.NoError(t, err)

	store, err := NewDatabaseStore(conn)
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestDatabaseStoreOverwriteLogsNoErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gormLog := logger.NewGormLogger(zap.New(core), logger.DefaultGormLoggerConfig())
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "blobs.db")), &gorm.Config{Logger: gormLog})
	require.NoError(t, err)

	store, err := NewDatabaseStore(conn)
	require.NoError(t, err)

	ctx := context.Background()
	for _, v := range []string{"v1", "v2", "v3"} {
		require.NoError(t, store.Put(ctx, "invoice-settings.json", []byte(v)))
	}

	data, err := store.Get(ctx, "invoice-settings.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("v3"), data)

	var count int64
	require.NoError(t, conn.Model(&Blob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}
