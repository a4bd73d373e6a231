package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"furnistore/internal/cache"
	"furnistore/internal/model"
	"furnistore/internal/repository"
)

const (
	productListCacheKey = "products:active"
	productCachePrefix  = "product:"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, productID uint) error
	ListAllProducts(ctx context.Context) ([]*model.Product, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
	cache       cache.Cache // nil disables caching
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewCatalogService(productRepo repository.ProductRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context) ([]*model.Product, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, productListCacheKey); err == nil {
			var products []*model.Product
			if err := json.Unmarshal(data, &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, productListCacheKey, products)
	return products, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	key := productCacheKey(productID)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var product model.Product
			if err := json.Unmarshal(data, &product); err == nil {
				return &product, nil
			}
		}
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, product)
	return product, nil
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}

	s.cacheInvalidate(ctx, productListCacheKey)
	return nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	s.cacheInvalidate(ctx, productListCacheKey, productCacheKey(product.ID))
	return nil
}

func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, productID uint) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	s.cacheInvalidate(ctx, productListCacheKey, productCacheKey(productID))
	return nil
}

func (s *catalogServiceImpl) ListAllProducts(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.List(ctx)
}

// Cache failures never fail the request; the store stays authoritative.

func (s *catalogServiceImpl) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *catalogServiceImpl) cacheInvalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func productCacheKey(productID uint) string {
	return fmt.Sprintf("%s%d", productCachePrefix, productID)
}
