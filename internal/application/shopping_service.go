package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
	"github.com/oksasatya/foodgram-api/pkg/mailer"
	mailtpl "github.com/oksasatya/foodgram-api/pkg/mailer/templates"
)

const ShoppingListFilename = "shopping_list.txt"

// ShoppingService builds the consolidated shopping list of a user's cart.
type ShoppingService struct {
	Store  repo.Store
	Jobs   JobPublisher
	Logger *logrus.Logger

	AppName string
	SiteURL string
}

func NewShoppingService(store repo.Store, logger *logrus.Logger) *ShoppingService {
	return &ShoppingService{Store: store, Logger: logger}
}

// List sums amounts per (name, unit) across every recipe in the cart.
func (s *ShoppingService) List(ctx context.Context, userID int64) ([]entity.ShoppingItem, error) {
	rows, err := s.Store.Marks.ShoppingRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entity.BuildShoppingList(rows), nil
}

func (s *ShoppingService) Views(ctx context.Context, userID int64) ([]ShoppingItemView, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ShoppingItemView, 0, len(items))
	for _, it := range items {
		out = append(out, ShoppingItemView{Name: it.Name, MeasurementUnit: it.MeasurementUnit, Amount: it.Amount})
	}
	return out, nil
}

// Text renders the list as the downloadable plain text file.
func (s *ShoppingService) Text(ctx context.Context, userID int64) (string, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}
	return entity.RenderShoppingList(items), nil
}

// SendByEmail queues the list to the user's email address with the text
// file attached. Unlike other emails this one is the point of the request,
// so enqueue failures are returned.
func (s *ShoppingService) SendByEmail(ctx context.Context, userID int64) error {
	if s.Jobs == nil {
		return unavailable("email delivery is not configured")
	}
	u, err := s.Store.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("user not found")
	}
	if err != nil {
		return err
	}
	items, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	lines := make([]mailtpl.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, mailtpl.Item{Name: it.Name, Amount: it.Amount, MeasurementUnit: it.MeasurementUnit})
	}
	data := mailtpl.ToMap(mailtpl.NewBaseEmailData(s.AppName, s.SiteURL, u.FullName(), u.Email, mailtpl.WithItems(lines)))
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.ShoppingList,
		Data:     data,
		Attachments: []mailer.Attachment{
			{Filename: ShoppingListFilename, Content: entity.RenderShoppingList(items)},
		},
	}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		metricEmailFailures.Add(1)
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("enqueue shopping list failed")
		}
		return unavailable("could not queue the email, try again later")
	}
	metricEmailsQueued.Add(1)
	return nil
}
