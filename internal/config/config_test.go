package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "pike", cfg.AppName)
	assert.Equal(t, "https://forge.laravel.com/api/v1", cfg.Forge.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Forge.Timeout)
	assert.Equal(t, StorageDisk, cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Invoice.DueDays)
	assert.Equal(t, TransportStdio, cfg.MCP.Transport)
	assert.False(t, cfg.Redis.Enabled())
}

func TestFromViperOverrides(t *testing.T) {
	v := newViper()
	v.Set("forge.base_url", "http://forge.test/api/v1/")
	v.Set("forge.server_id", 123)
	v.Set("storage.driver", " S3 ")
	v.Set("storage.s3.prefix", "/pike/")
	v.Set("redis.addr", "localhost:6379")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "http://forge.test/api/v1", cfg.Forge.BaseURL)
	assert.Equal(t, int64(123), cfg.Forge.ServerID)
	assert.Equal(t, StorageS3, cfg.Storage.Driver)
	assert.Equal(t, "pike", cfg.Storage.S3Prefix)
	assert.True(t, cfg.Redis.Enabled())
}

func TestFromViperRejectsUnknownDrivers(t *testing.T) {
	v := newViper()
	v.Set("storage.driver", "ftp")
	_, err := FromViper(v)
	assert.ErrorIs(t, err, ErrInvalidStorageDriver)

	v = newViper()
	v.Set("mcp.transport", "sse")
	_, err = FromViper(v)
	assert.ErrorIs(t, err, ErrInvalidTransport)
}
