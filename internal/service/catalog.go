package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Studentcuchd/sweet-treats-manager/internal/cache"
	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/storage"
	"github.com/google/uuid"
)

// CatalogService — чтение каталога с кэшированием результатов.
type CatalogService interface {
	ListSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error)
	// RefreshSweets перечитывает выборку мимо кэша и перезаписывает запись в нём.
	RefreshSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error)
	GetSweet(ctx context.Context, id uuid.UUID) (*models.Sweet, error)
	Categories(ctx context.Context) ([]string, error)
	// Invalidate сбрасывает все закэшированные результаты каталога.
	Invalidate(ctx context.Context)
}

// Invalidator — то, что сервису склада нужно от каталога.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type catalogService struct {
	log    *slog.Logger
	sweets storage.SweetStorage
	cache  cache.Store
}

func NewCatalogService(log *slog.Logger, sweets storage.SweetStorage, store cache.Store) CatalogService {
	return &catalogService{
		log:    log,
		sweets: sweets,
		cache:  store,
	}
}

const categoriesKey = "categories"

func listKey(filter models.SweetFilter) string {
	return "list:" + filter.CacheKey()
}

func (s *catalogService) ListSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error) {
	const op = "service.CatalogService.ListSweets"
	logger := s.log.With(slog.String("op", op), slog.String("filter", filter.CacheKey()))

	var sweets []models.Sweet
	if s.fromCache(ctx, logger, listKey(filter), &sweets) {
		logger.Debug("catalog served from cache", slog.Int("count", len(sweets)))
		return sweets, nil
	}
	return s.fetchSweets(ctx, logger, op, filter)
}

func (s *catalogService) RefreshSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error) {
	const op = "service.CatalogService.RefreshSweets"
	logger := s.log.With(slog.String("op", op), slog.String("filter", filter.CacheKey()))

	return s.fetchSweets(ctx, logger, op, filter)
}

func (s *catalogService) fetchSweets(ctx context.Context, logger *slog.Logger, op string, filter models.SweetFilter) ([]models.Sweet, error) {
	gen, cacheable := s.generation(ctx, logger)

	sweets, err := s.sweets.ListSweets(ctx, filter)
	if err != nil {
		logger.Error("failed to list sweets", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list sweets: %w", op, asGateway(err))
	}
	if cacheable {
		s.toCache(ctx, logger, gen, listKey(filter), sweets)
	}

	logger.Debug("catalog fetched from storage", slog.Int("count", len(sweets)))
	return sweets, nil
}

func (s *catalogService) GetSweet(ctx context.Context, id uuid.UUID) (*models.Sweet, error) {
	const op = "service.CatalogService.GetSweet"
	logger := s.log.With(slog.String("op", op), slog.String("sweetID", id.String()))

	sweet, err := s.sweets.GetSweetByID(ctx, id)
	if err != nil {
		logger.Warn("failed to get sweet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, asGateway(err))
	}
	return sweet, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	const op = "service.CatalogService.Categories"
	logger := s.log.With(slog.String("op", op))

	var categories []string
	if s.fromCache(ctx, logger, categoriesKey, &categories) {
		return categories, nil
	}

	gen, cacheable := s.generation(ctx, logger)

	categories, err := s.sweets.ListCategories(ctx)
	if err != nil {
		logger.Error("failed to list categories", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, asGateway(err))
	}
	if cacheable {
		s.toCache(ctx, logger, gen, categoriesKey, categories)
	}
	return categories, nil
}

func (s *catalogService) Invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Error("failed to invalidate catalog cache",
			slog.String("op", "service.CatalogService.Invalidate"),
			slog.Any("error", err),
		)
	}
}

// fromCache — ошибки кэша не фатальны, при них идём в хранилище.
func (s *catalogService) fromCache(ctx context.Context, logger *slog.Logger, key string, dst any) bool {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed, continuing with storage", slog.Any("error", err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("failed to decode cached value", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// generation читается до запроса в хранилище: если склад изменится
// во время чтения, устаревший результат не попадёт в кэш.
func (s *catalogService) generation(ctx context.Context, logger *slog.Logger) (int64, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		logger.Warn("cache generation unavailable, result will not be cached", slog.Any("error", err))
		return 0, false
	}
	return gen, true
}

func (s *catalogService) toCache(ctx context.Context, logger *slog.Logger, generation int64, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("failed to encode value for cache", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := s.cache.Set(ctx, generation, key, data); err != nil {
		logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
