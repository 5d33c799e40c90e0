package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

const recipeColumns = `r.id, r.author_id, r.name, r.text, r.cooking_time, r.image, r.created_at`

type RecipeRepository struct {
	pool *pgxpool.Pool
}

func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{pool: pool}
}

func scanRecipe(row pgx.Row, rec *entity.Recipe) error {
	return row.Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Text, &rec.CookingTime, &rec.Image, &rec.CreatedAt)
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO recipes (author_id, name, text, cooking_time, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rec.AuthorID, rec.Name, rec.Text, rec.CookingTime, rec.Image).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return translate(err)
	}
	if err := insertRecipeSets(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *RecipeRepository) Update(ctx context.Context, rec *entity.Recipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE recipes
		SET name = $1, text = $2, cooking_time = $3, image = $4
		WHERE id = $5
	`, rec.Name, rec.Text, rec.CookingTime, rec.Image, rec.ID)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, rec.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, rec.ID); err != nil {
		return err
	}
	if err := insertRecipeSets(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// insertRecipeSets bulk-inserts ingredient rows and tag links with COPY.
func insertRecipeSets(ctx context.Context, tx pgx.Tx, rec *entity.Recipe) error {
	ingredientRows := make([][]any, 0, len(rec.Ingredients))
	for _, ri := range rec.Ingredients {
		ingredientRows = append(ingredientRows, []any{rec.ID, ri.IngredientID, int16(ri.Amount)})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"recipe_ingredients"},
		[]string{"recipe_id", "ingredient_id", "amount"},
		pgx.CopyFromRows(ingredientRows),
	); err != nil {
		return translate(err)
	}

	tagRows := make([][]any, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		tagRows = append(tagRows, []any{rec.ID, t.ID})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"recipe_tags"},
		[]string{"recipe_id", "tag_id"},
		pgx.CopyFromRows(tagRows),
	); err != nil {
		return translate(err)
	}
	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int64) (*entity.Recipe, error) {
	rec := &entity.Recipe{}
	row := r.pool.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1`, id)
	if err := scanRecipe(row, rec); err != nil {
		return nil, translate(err)
	}
	recipes := []entity.Recipe{*rec}
	if err := r.loadSets(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

func (r *RecipeRepository) List(ctx context.Context, f repository.RecipeFilter) ([]entity.Recipe, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.AuthorID != 0 {
		where = append(where, "r.author_id = "+arg(f.AuthorID))
	}
	if len(f.TagSlugs) > 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+arg(f.TagSlugs)+`))`)
	}
	if f.FavoritedBy != 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM favorites fv WHERE fv.recipe_id = r.id AND fv.user_id = `+arg(f.FavoritedBy)+`)`)
	}
	if f.InCartOf != 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = `+arg(f.InCartOf)+`)`)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes r WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + recipeColumns + ` FROM recipes r WHERE ` + cond +
		` ORDER BY r.created_at DESC, r.id DESC LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadSets(ctx, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *RecipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]entity.Recipe, error) {
	q := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.author_id = $1 ORDER BY r.created_at DESC, r.id DESC`
	args := []any{authorID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes WHERE author_id = $1`, authorID).Scan(&n)
	return n, err
}

func (r *RecipeRepository) IDsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM recipes WHERE author_id = $1`, authorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// loadSets fills Tags and Ingredients for the given recipes in two queries.
func (r *RecipeRepository) loadSets(ctx context.Context, recipes []entity.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, len(recipes))
	pos := make(map[int64]int, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		pos[recipes[i].ID] = i
		recipes[i].Tags = []entity.Tag{}
		recipes[i].Ingredients = []entity.RecipeIngredient{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var recipeID int64
		var t entity.Tag
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			rows.Close()
			return err
		}
		i := pos[recipeID]
		recipes[i].Tags = append(recipes[i].Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY ri.id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID int64
		var ri entity.RecipeIngredient
		if err := rows.Scan(&recipeID, &ri.IngredientID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			return err
		}
		i := pos[recipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, ri)
	}
	return rows.Err()
}

func collectRecipes(rows pgx.Rows) ([]entity.Recipe, error) {
	defer rows.Close()
	recipes := make([]entity.Recipe, 0)
	for rows.Next() {
		var rec entity.Recipe
		if err := scanRecipe(rows, &rec); err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
