package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

const (
	catalogCacheTTL  = 10 * time.Minute
	catalogKeyPrefix = "catalog:"

	// Longer ingredient prefixes bypass the cache so clients cannot mint keys.
	maxCachedPrefix = 2
)

// CatalogService serves tags and ingredients, read through a Redis cache.
type CatalogService struct {
	Repo   repo.CatalogRepository
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewCatalogService(r repo.CatalogRepository, rdb *redis.Client, logger *logrus.Logger) *CatalogService {
	return &CatalogService{Repo: r, Redis: rdb, Logger: logger}
}

func (s *CatalogService) Tags(ctx context.Context) ([]TagView, error) {
	return cached(ctx, s, catalogKeyPrefix+"tags", func() ([]TagView, error) {
		tags, err := s.Repo.ListTags(ctx)
		if err != nil {
			return nil, err
		}
		return toTagViews(tags), nil
	})
}

func (s *CatalogService) Tag(ctx context.Context, id int64) (*TagView, error) {
	t, err := s.Repo.GetTag(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("tag not found")
	}
	if err != nil {
		return nil, err
	}
	v := toTagView(*t)
	return &v, nil
}

// Ingredients lists ingredients whose name starts with prefix, ignoring case.
func (s *CatalogService) Ingredients(ctx context.Context, prefix string) ([]IngredientView, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	load := func() ([]IngredientView, error) {
		items, err := s.Repo.ListIngredients(ctx, prefix)
		if err != nil {
			return nil, err
		}
		return toIngredientViews(items), nil
	}
	key, ok := ingredientCacheKey(prefix)
	if !ok {
		return load()
	}
	return cached(ctx, s, key, load)
}

// ingredientCacheKey reports the cache key for a normalized prefix, or false
// when the prefix is too long or not a short run of ASCII letters.
func ingredientCacheKey(prefix string) (string, bool) {
	if len(prefix) > maxCachedPrefix {
		return "", false
	}
	for _, c := range prefix {
		if c < 'a' || c > 'z' {
			return "", false
		}
	}
	return catalogKeyPrefix + "ingredients:" + prefix, true
}

func (s *CatalogService) Ingredient(ctx context.Context, id int64) (*IngredientView, error) {
	i, err := s.Repo.GetIngredient(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("ingredient not found")
	}
	if err != nil {
		return nil, err
	}
	v := toIngredientView(*i)
	return &v, nil
}

// InvalidateCache drops every cached catalog listing.
func (s *CatalogService) InvalidateCache(ctx context.Context) error {
	if s.Redis == nil {
		return nil
	}
	n, err := helpers.RedisDelPrefix(ctx, s.Redis, catalogKeyPrefix)
	if err == nil && s.Logger != nil {
		s.Logger.WithField("keys", n).Debug("catalog cache invalidated")
	}
	return err
}

func cached[T any](ctx context.Context, s *CatalogService, key string, load func() ([]T, error)) ([]T, error) {
	if s.Redis != nil {
		var hit []T
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &hit)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("catalog cache read failed")
		}
		if ok {
			metricCatalogCache.Add("hit", 1)
			return hit, nil
		}
		metricCatalogCache.Add("miss", 1)
	}
	items, err := load()
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, items, catalogCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("catalog cache write failed")
		}
	}
	return items, nil
}
