package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mini-shop/models"
	"mini-shop/repositories"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	productCachePrefix = "products:"
	productListKey     = productCachePrefix + "all"
	productCacheTTL    = 5 * time.Minute
)

var maxPrice = decimal.New(1, 10)

// ProductService is the catalog. Reads go through Redis when a client is
// configured; a nil client disables caching.
type ProductService struct {
	store  repositories.Store
	cache  *redis.Client
	logger *zap.Logger
}

func NewProductService(store repositories.Store, cache *redis.Client, logger *zap.Logger) *ProductService {
	return &ProductService{store: store, cache: cache, logger: logger}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if s.getCached(ctx, productListKey, &products) {
		return products, nil
	}

	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, productListKey, products)
	return products, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := fmt.Sprintf("%s%d", productCachePrefix, id)

	var product models.Product
	if s.getCached(ctx, key, &product) {
		return &product, nil
	}

	found, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, key, found)
	return found, nil
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := checkPrice(req.Price); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if err := checkPrice(req.Price); err != nil {
			return nil, err
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := s.store.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

// InvalidateCache drops every cached catalog read. Cache failures are logged
// and otherwise ignored.
func (s *ProductService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	var keys []string
	iter := s.cache.Scan(ctx, 0, productCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("scan product cache", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("invalidate product cache", zap.Error(err))
	}
}

func (s *ProductService) getCached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read product cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("decode product cache", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ProductService) setCached(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("encode product cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, productCacheTTL).Err(); err != nil {
		s.logger.Warn("write product cache", zap.String("key", key), zap.Error(err))
	}
}

// checkPrice rejects prices the NUMERIC(12,2) column would reject or round.
func checkPrice(price *decimal.Decimal) error {
	var msg string
	switch {
	case price == nil:
		msg = "price is required"
	case price.IsNegative():
		msg = "price must be greater than or equal to 0"
	case !price.Equal(price.Round(2)):
		msg = "price must have at most 2 decimal places"
	case price.GreaterThanOrEqual(maxPrice):
		msg = "price must be less than " + maxPrice.String()
	default:
		return nil
	}
	return models.Validation("Validation failed", models.FieldViolation{Field: "price", Message: msg})
}
