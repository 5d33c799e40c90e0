package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

const joinedUserColumns = `u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.created_at`

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

func (r *FollowRepository) Follow(ctx context.Context, followerID, authorID int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO follows (user_id, author_id) VALUES ($1, $2)`, followerID, authorID)
	return translate(err)
}

func (r *FollowRepository) Unfollow(ctx context.Context, followerID, authorID int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, followerID, authorID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, authorID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`,
		followerID, authorID).Scan(&ok)
	return ok, err
}

func (r *FollowRepository) Following(ctx context.Context, followerID int64, authorIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(authorIDs))
	if followerID == 0 || len(authorIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT author_id FROM follows WHERE user_id = $1 AND author_id = ANY($2)`,
		followerID, authorIDs)
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

func (r *FollowRepository) ListFollowing(ctx context.Context, followerID int64, limit, offset int) ([]entity.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, followerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+joinedUserColumns+`
		FROM follows f
		JOIN users u ON u.id = f.author_id
		WHERE f.user_id = $1
		ORDER BY u.username
		LIMIT $2 OFFSET $3
	`, followerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	users, err := collectUsers(rows)
	return users, total, err
}

func (r *FollowRepository) ListFollowers(ctx context.Context, authorID int64) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+joinedUserColumns+`
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.author_id = $1
		ORDER BY u.id
	`, authorID)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

var _ repository.FollowRepository = (*FollowRepository)(nil)
