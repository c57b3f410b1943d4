package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/cache"
	"github.com/aether-industries/storefront-api/internal/models"
	"github.com/aether-industries/storefront-api/internal/repository"
)

// CatalogService serves the public catalog: full fetch through the
// normalizing accessor, in-memory filter pipeline on top, and a cached
// snapshot as a fallback when the store is unreachable.
type CatalogService struct {
	productRepo *repository.ProductRepository
	snapshot    *cache.CatalogCache
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(productRepo *repository.ProductRepository, snapshot *cache.CatalogCache) *CatalogService {
	return &CatalogService{productRepo: productRepo, snapshot: snapshot}
}

// ListProducts returns the filtered catalog in the store's default order
// (alphabetical by name). If the store read fails, the cached snapshot is
// served instead; only when both fail does the error propagate.
func (s *CatalogService) ListProducts(ctx context.Context, selections FilterSelections) ([]models.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Catalog fetch failed, trying cached snapshot")
		cached, cacheErr := s.snapshot.Get(ctx)
		if cacheErr != nil || cached == nil {
			return nil, err
		}
		products = cached
	}
	return FilterProducts(products, selections), nil
}

// GetProductBySlug returns a single product for the detail page.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.productRepo.GetBySlug(ctx, slug)
}

// GetProductByID returns a single product; used when snapshotting a product
// into the cart.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// RefreshSnapshot re-reads the catalog and rewrites the cached snapshot.
// Called by the background refresh worker.
func (s *CatalogService) RefreshSnapshot(ctx context.Context) error {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	return s.snapshot.Set(ctx, products)
}
