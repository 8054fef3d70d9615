package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"market_assistant/internal/metrics"
	"market_assistant/pkg"
	"market_assistant/src/model"
	"market_assistant/src/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name     string
	products []pkg.Product
	err      error
	calls    atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Load(_ context.Context) ([]pkg.Product, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

var (
	tomato = pkg.Product{Name: "Tomato", Price: 45.5, Category: pkg.CategoryVegetable, Stock: 300}
	apple  = pkg.Product{Name: "Apple", Price: 140, Category: pkg.CategoryFruit, Stock: 150}
)

func TestRefreshUsesFirstAvailableSource(t *testing.T) {
	down := &fakeSource{name: "redis", err: model.ErrCatalogNotFound}
	seed := &fakeSource{name: "file", products: []pkg.Product{tomato, apple}}
	service := NewCatalogService(down, seed)

	require.NoError(t, service.Refresh(context.Background()))

	assert.Equal(t, []pkg.Product{tomato, apple}, service.Snapshot())
	updatedAt, source := service.UpdatedAt()
	assert.False(t, updatedAt.IsZero())
	assert.Equal(t, "file", source)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CatalogProducts))
}

func TestRefreshKeepsStaleSnapshotOnFailure(t *testing.T) {
	source := &fakeSource{name: "file", products: []pkg.Product{tomato}}
	service := NewCatalogService(source)
	require.NoError(t, service.Refresh(context.Background()))

	before := testutil.ToFloat64(metrics.CatalogRefreshFailures)
	source.err = errors.New("disk on fire")

	err := service.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, []pkg.Product{tomato}, service.Snapshot())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CatalogRefreshFailures))
}

func TestRefreshWithoutSources(t *testing.T) {
	assert.Error(t, NewCatalogService().Refresh(context.Background()))
}

func TestSnapshotIsACopy(t *testing.T) {
	service := NewCatalogService()
	service.Replace([]pkg.Product{tomato}, "test")

	snapshot := service.Snapshot()
	snapshot[0].Price = 1

	assert.Equal(t, 45.5, service.Snapshot()[0].Price)
}

func TestRunPollsUntilCancelled(t *testing.T) {
	source := &fakeSource{name: "file", products: []pkg.Product{tomato}}
	service := NewCatalogService(source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Equal(t, []pkg.Product{tomato}, service.Snapshot())
}

func TestCacheCatalogSource(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := storage.NewCatalogCache(client, time.Minute)
	source := NewCacheCatalogSource(cache)
	assert.Equal(t, "redis", source.Name())

	_, err := source.Load(ctx)
	assert.ErrorIs(t, err, model.ErrCatalogNotFound)

	require.NoError(t, cache.Save(ctx, storage.CatalogSnapshot{Products: []pkg.Product{apple}}))
	service := NewCatalogService(source)
	require.NoError(t, service.Refresh(ctx))
	assert.Equal(t, []pkg.Product{apple}, service.Snapshot())
}

func TestSearchProducts(t *testing.T) {
	service := NewCatalogService()
	service.Replace([]pkg.Product{tomato, apple}, "test")

	assert.Equal(t, []pkg.Product{tomato}, service.SearchProducts("TOM"))
	assert.Len(t, service.SearchProducts(""), 2)
	assert.Empty(t, service.SearchProducts("mango"))
}

func TestStaticCatalog(t *testing.T) {
	catalog := StaticCatalog{tomato}
	snapshot := catalog.Snapshot()
	snapshot[0].Name = "changed"
	assert.Equal(t, "Tomato", catalog[0].Name)
}
