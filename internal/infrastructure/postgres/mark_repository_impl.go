package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

// MarkRepository serves the favorites and shopping_cart tables, which share
// the (user_id, recipe_id) shape.
type MarkRepository struct {
	pool *pgxpool.Pool
}

func NewMarkRepository(pool *pgxpool.Pool) *MarkRepository {
	return &MarkRepository{pool: pool}
}

func markTable(kind repository.MarkKind) (string, error) {
	switch kind {
	case repository.Favorite:
		return "favorites", nil
	case repository.ShoppingCart:
		return "shopping_cart", nil
	}
	return "", fmt.Errorf("unknown mark kind %q", kind)
}

func (r *MarkRepository) Add(ctx context.Context, kind repository.MarkKind, userID, recipeID int64) error {
	table, err := markTable(kind)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO `+table+` (user_id, recipe_id) VALUES ($1, $2)`, userID, recipeID)
	return translate(err)
}

func (r *MarkRepository) Remove(ctx context.Context, kind repository.MarkKind, userID, recipeID int64) error {
	table, err := markTable(kind)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MarkRepository) Exists(ctx context.Context, kind repository.MarkKind, userID, recipeID int64) (bool, error) {
	table, err := markTable(kind)
	if err != nil {
		return false, err
	}
	var ok bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE user_id = $1 AND recipe_id = $2)`,
		userID, recipeID).Scan(&ok)
	return ok, err
}

func (r *MarkRepository) Marked(ctx context.Context, kind repository.MarkKind, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return out, nil
	}
	table, err := markTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT recipe_id FROM `+table+` WHERE user_id = $1 AND recipe_id = ANY($2)`,
		userID, recipeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ShoppingRows groups strictly by (name, unit) so ingredients that share a
// name but not a unit are never merged.
func (r *MarkRepository) ShoppingRows(ctx context.Context, userID int64) ([]entity.ShoppingItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.name, i.measurement_unit, SUM(ri.amount)::bigint
		FROM shopping_cart sc
		JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE sc.user_id = $1
		GROUP BY i.name, i.measurement_unit
		ORDER BY i.name, i.measurement_unit
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]entity.ShoppingItem, 0)
	for rows.Next() {
		var it entity.ShoppingItem
		var amount int64
		if err := rows.Scan(&it.Name, &it.MeasurementUnit, &amount); err != nil {
			return nil, err
		}
		it.Amount = int(amount)
		items = append(items, it)
	}
	return items, rows.Err()
}

var _ repository.MarkRepository = (*MarkRepository)(nil)
