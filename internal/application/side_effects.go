package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/pkg/mailer"
)

// Side effects below are best effort: the request already succeeded, so
// failures are logged and swallowed.

const sideEffectTimeout = 3 * time.Second

func publishEmail(ctx context.Context, jobs JobPublisher, logger *logrus.Logger, job mailer.EmailJob) {
	if jobs == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := jobs.PublishJSON(c, job); err != nil {
		metricEmailFailures.Add(1)
		if logger != nil {
			logger.WithError(err).WithField("template", job.Template).Warn("enqueue email failed")
		}
		return
	}
	metricEmailsQueued.Add(1)
}

func indexRecipe(ctx context.Context, index RecipeIndex, logger *logrus.Logger, r *entity.Recipe) {
	if index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := index.Index(c, r); err != nil && logger != nil {
		logger.WithError(err).WithField("recipe_id", r.ID).Warn("es index failed")
	}
}

func removeFromIndex(ctx context.Context, index RecipeIndex, logger *logrus.Logger, id int64) {
	if index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := index.Remove(c, id); err != nil && logger != nil {
		logger.WithError(err).WithField("recipe_id", id).Warn("es delete failed")
	}
}

func removeImage(ctx context.Context, images ImageStore, logger *logrus.Logger, url string) {
	if images == nil || url == "" {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := images.Remove(c, url); err != nil && logger != nil {
		logger.WithError(err).WithField("image", url).Warn("image cleanup failed")
	}
}
