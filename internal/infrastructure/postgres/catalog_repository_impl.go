package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *CatalogRepository) ListTags(ctx context.Context) ([]entity.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

func (r *CatalogRepository) GetTag(ctx context.Context, id int64) (*entity.Tag, error) {
	t := &entity.Tag{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, color, slug FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (r *CatalogRepository) TagsByIDs(ctx context.Context, ids []int64) ([]entity.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, slug FROM tags WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

func (r *CatalogRepository) ListIngredients(ctx context.Context, prefix string) ([]entity.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, measurement_unit
		FROM ingredients
		WHERE lower(name) LIKE lower($1) || '%'
		ORDER BY name, measurement_unit
	`, likeEscaper.Replace(prefix))
	if err != nil {
		return nil, err
	}
	return collectIngredients(rows)
}

func (r *CatalogRepository) GetIngredient(ctx context.Context, id int64) (*entity.Ingredient, error) {
	i := &entity.Ingredient{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id).
		Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		return nil, translate(err)
	}
	return i, nil
}

func (r *CatalogRepository) IngredientsByIDs(ctx context.Context, ids []int64) ([]entity.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, measurement_unit FROM ingredients WHERE id = ANY($1) ORDER BY name
	`, ids)
	if err != nil {
		return nil, err
	}
	return collectIngredients(rows)
}

func (r *CatalogRepository) UpsertTag(ctx context.Context, t *entity.Tag) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color
		RETURNING id
	`, t.Name, t.Color, t.Slug).Scan(&t.ID)
}

func (r *CatalogRepository) UpsertIngredient(ctx context.Context, i *entity.Ingredient) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2)
		ON CONFLICT (name, measurement_unit) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, i.Name, i.MeasurementUnit).Scan(&i.ID)
}

func collectTags(rows pgx.Rows) ([]entity.Tag, error) {
	defer rows.Close()
	tags := make([]entity.Tag, 0)
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func collectIngredients(rows pgx.Rows) ([]entity.Ingredient, error) {
	defer rows.Close()
	out := make([]entity.Ingredient, 0)
	for rows.Next() {
		var i entity.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)
