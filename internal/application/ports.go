package application

import (
	"context"
	"io"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
)

// JobPublisher enqueues background jobs such as emails.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ImageStore keeps uploaded recipe images and returns their public URL.
// Remove ignores URLs the store did not produce.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// RecipeIndex is the full-text search index of recipes.
type RecipeIndex interface {
	Index(ctx context.Context, r *entity.Recipe) error
	Remove(ctx context.Context, id int64) error
	Search(ctx context.Context, q string, limit, offset int) ([]int64, int, error)
}
