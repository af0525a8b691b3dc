package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/smallbiznis/pike/internal/lock"
	"github.com/smallbiznis/pike/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(Params{Store: store, Locker: lock.NewLocalLocker(), Log: zap.NewNop()})
	return svc.(*Service), store
}

func TestAllPersistsDefaultsOnFirstRead(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, domain.StorageKey)
	require.NoError(t, err)
	require.False(t, ok)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), all)

	ok, err = store.Exists(ctx, domain.StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.Settings{"from_address": "Acme Corp"})
	require.NoError(t, err)

	first, err := svc.All(ctx)
	require.NoError(t, err)
	second, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUpdateMergesPartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, domain.Settings{
		"from_address": "Acme Corp\n123 Main St",
		"tax_percent":  8.25,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp\n123 Main St", updated["from_address"])
	assert.Equal(t, 8.25, updated["tax_percent"])
	assert.Equal(t, "Net 30", updated["payment_terms"])

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, all)
}

func TestUpdateLastWriteWins(t *testing.T) {
	direct, _ := newTestService(t)
	twice, _ := newTestService(t)
	ctx := context.Background()

	_, err := twice.Update(ctx, domain.Settings{"payment_terms": "Net 15"})
	require.NoError(t, err)
	viaTwo, err := twice.Update(ctx, domain.Settings{"payment_terms": "Due on Receipt"})
	require.NoError(t, err)

	viaOne, err := direct.Update(ctx, domain.Settings{"payment_terms": "Due on Receipt"})
	require.NoError(t, err)

	assert.Equal(t, viaOne, viaTwo)
}

func TestUpdateNeverDropsKeys(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.Settings{"notes": "Thanks!"})
	require.NoError(t, err)
	updated, err := svc.Update(ctx, domain.Settings{"terms": "Pay on time", "notes": nil})
	require.NoError(t, err)

	assert.Equal(t, "Thanks!", updated["notes"])
	assert.Equal(t, "Pay on time", updated["terms"])
}

func TestUpdateNormalizesIntegersToJSONNumbers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, domain.Settings{"tax_percent": 5})
	require.NoError(t, err)
	assert.Equal(t, float64(5), updated["tax_percent"])
}

func TestResetRestoresDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.Settings{"from_address": "Acme", "tax_percent": 10.0})
	require.NoError(t, err)

	reset, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), reset)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), all)
}

func TestGetFallsBack(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Get(ctx, "payment_terms", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Net 30", v)

	v, err = svc.Get(ctx, "currency", "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", v)
}

func TestPersistedFormat(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.Settings{"logo_url": "https://example.com/logo.png?a=1&b=2"})
	require.NoError(t, err)

	raw, err := store.Get(ctx, domain.StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"logo_url\": \"https://example.com/logo.png?a=1&b=2\"")
	assert.NotContains(t, string(raw), `\/`)
	assert.NotContains(t, string(raw), `\u0026`)
}

func TestCorruptDocumentReadsAsDefaults(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.StorageKey, []byte("[1,2,3]")))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), all)
}

type failingStore struct{ storage.Store }

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("bucket unavailable")
}

func TestStorageFailureSurfaces(t *testing.T) {
	svc := NewService(Params{Store: failingStore{}, Locker: lock.NewLocalLocker(), Log: zap.NewNop()})

	_, err := svc.All(context.Background())
	assert.EqualError(t, err, "bucket unavailable")
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keys := []string{"from_address", "payment_terms", "notes", "terms", "logo_url"}
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := svc.Update(ctx, domain.Settings{key: "set-" + key})
			assert.NoError(t, err)
		}(key)
	}
	wg.Wait()

	all, err := svc.All(ctx)
	require.NoError(t, err)
	for _, key := range keys {
		assert.Equal(t, "set-"+key, all[key])
	}
}
