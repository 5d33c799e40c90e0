package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/config"
	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
	pginfra "github.com/oksasatya/foodgram-api/internal/infrastructure/postgres"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.OpenPool(ctx, pginfra.PoolOptions{
		DSN:             cfg.PostgresDSN(),
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
		ConnectAttempts: cfg.DBConnectTries,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	catalog := pginfra.NewCatalogRepository(pool)
	tags, ingredients, err := seedCatalog(ctx, catalog, cfg.SeedDataDir)
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	helpers.LogInfo(logger, "catalog seeded", logrus.Fields{"tags": tags, "ingredients": ingredients})

	// Cached listings would hide the new rows for up to the cache TTL.
	if cfg.RedisAddr != "" {
		rdb, err := helpers.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		if err := app.NewCatalogService(catalog, rdb, logger).InvalidateCache(ctx); err != nil {
			logger.WithError(err).Warn("catalog cache not invalidated")
		}
	}
}

// seedCatalog upserts tags.json and ingredients.json from dir. It is safe
// to run repeatedly.
func seedCatalog(ctx context.Context, repo repository.CatalogRepository, dir string) (int, int, error) {
	var tags []tagRecord
	if err := readJSON(filepath.Join(dir, "tags.json"), &tags); err != nil {
		return 0, 0, err
	}
	for _, rec := range tags {
		t := entity.Tag{Name: rec.Name, Color: rec.Color, Slug: rec.Slug}
		if err := repo.UpsertTag(ctx, &t); err != nil {
			return 0, 0, fmt.Errorf("tag %q: %w", rec.Slug, err)
		}
	}

	var ingredients []ingredientRecord
	if err := readJSON(filepath.Join(dir, "ingredients.json"), &ingredients); err != nil {
		return 0, 0, err
	}
	for _, rec := range ingredients {
		i := entity.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit}
		if err := repo.UpsertIngredient(ctx, &i); err != nil {
			return 0, 0, fmt.Errorf("ingredient %q: %w", rec.Name, err)
		}
	}
	return len(tags), len(ingredients), nil
}

func readJSON(path string, dest any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
