package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"market_assistant/internal/metrics"
	"market_assistant/pkg"
	"market_assistant/src/logger"
	"market_assistant/src/storage"
)

// CatalogSource is anything that can produce a full catalog snapshot
type CatalogSource interface {
	Name() string
	Load(ctx context.Context) ([]pkg.Product, error)
}

// CatalogProvider hands out read-only catalog snapshots
type CatalogProvider interface {
	Snapshot() []pkg.Product
}

// StaticCatalog is a fixed in-memory catalog
type StaticCatalog []pkg.Product

func (c StaticCatalog) Snapshot() []pkg.Product {
	return slices.Clone(c)
}

// CacheCatalogSource reads the snapshot the external poller publishes to redis
type CacheCatalogSource struct {
	cache *storage.CatalogCache
}

func NewCacheCatalogSource(cache *storage.CatalogCache) *CacheCatalogSource {
	return &CacheCatalogSource{cache: cache}
}

func (s *CacheCatalogSource) Name() string {
	return "redis"
}

func (s *CacheCatalogSource) Load(ctx context.Context) ([]pkg.Product, error) {
	snapshot, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Products, nil
}

// CatalogService holds the current catalog snapshot. Readers never wait on a
// refresh; a failed refresh keeps the previous snapshot.
type CatalogService struct {
	mu        sync.RWMutex
	products  []pkg.Product
	updatedAt time.Time
	source    string
	sources   []CatalogSource
}

// NewCatalogService creates a service that tries sources in order on refresh
func NewCatalogService(sources ...CatalogSource) *CatalogService {
	return &CatalogService{sources: sources}
}

// Snapshot returns a copy of the current catalog
func (cs *CatalogService) Snapshot() []pkg.Product {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return slices.Clone(cs.products)
}

// Replace swaps in a new catalog
func (cs *CatalogService) Replace(products []pkg.Product, source string) {
	cs.mu.Lock()
	cs.products = slices.Clone(products)
	cs.updatedAt = time.Now()
	cs.source = source
	cs.mu.Unlock()

	metrics.CatalogProducts.Set(float64(len(products)))
}

// UpdatedAt reports when the snapshot was last replaced and by which source
func (cs *CatalogService) UpdatedAt() (time.Time, string) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.updatedAt, cs.source
}

// Refresh loads from the first source that answers. When every source
// fails the current snapshot stays in place and the joined errors are returned.
func (cs *CatalogService) Refresh(ctx context.Context) error {
	if len(cs.sources) == 0 {
		return errors.New("no catalog sources configured")
	}

	var errs []error
	for _, source := range cs.sources {
		products, err := source.Load(ctx)
		if err != nil {
			logger.Debug().Err(err).Str("source", source.Name()).Msg("Catalog source unavailable")
			errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
			continue
		}

		cs.Replace(products, source.Name())
		logger.Info().
			Str("source", source.Name()).
			Int("products", len(products)).
			Msg("Catalog refreshed")
		return nil
	}

	metrics.CatalogRefreshFailures.Inc()
	return fmt.Errorf("catalog refresh failed: %w", errors.Join(errs...))
}

// Run refreshes on every tick until ctx is cancelled
func (cs *CatalogService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cs.Refresh(ctx); err != nil {
				logger.Warn().Err(err).Msg("Keeping stale catalog snapshot")
			}
		}
	}
}

// SearchProducts returns catalog entries whose name contains the query
func (cs *CatalogService) SearchProducts(query string) []pkg.Product {
	return SearchProducts(cs.Snapshot(), query)
}

// SearchProducts filters products by case-insensitive name substring.
// A blank query returns every product.
func SearchProducts(products []pkg.Product, query string) []pkg.Product {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return products
	}

	var results []pkg.Product
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), queryLower) {
			results = append(results, product)
		}
	}
	return results
}
