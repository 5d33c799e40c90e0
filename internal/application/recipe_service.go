package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
	"github.com/oksasatya/foodgram-api/pkg/mailer"
	mailtpl "github.com/oksasatya/foodgram-api/pkg/mailer/templates"
)

// RecipeService owns recipe authoring and listing.
type RecipeService struct {
	Store  repo.Store
	Images ImageStore
	Index  RecipeIndex
	Jobs   JobPublisher
	Logger *logrus.Logger

	AppName string
	SiteURL string
}

func NewRecipeService(store repo.Store, logger *logrus.Logger) *RecipeService {
	return &RecipeService{Store: store, Logger: logger}
}

type IngredientAmount struct {
	ID     int64
	Amount int
}

type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	Ingredients []IngredientAmount
	Tags        []int64
}

// ListQuery filters a recipe listing. Favorited and InCart apply to the viewer.
type ListQuery struct {
	AuthorID  int64
	Tags      []string
	Favorited bool
	InCart    bool
	Limit     int
	Offset    int
}

// validate checks every field of in and resolves the referenced ingredients
// and tags. Nothing is written.
func (s *RecipeService) validate(ctx context.Context, in *RecipeInput, requireImage bool) (*entity.Recipe, error) {
	verr := &ValidationError{}
	in.Name = strings.TrimSpace(in.Name)
	in.Text = strings.TrimSpace(in.Text)
	switch {
	case in.Name == "":
		verr.Add("name", "is required")
	case len([]rune(in.Name)) > entity.MaxNameLength:
		verr.Add("name", fmt.Sprintf("must be at most %d characters long", entity.MaxNameLength))
	}
	if in.Text == "" {
		verr.Add("text", "is required")
	}
	if in.CookingTime < entity.MinCookingTime || in.CookingTime > entity.MaxCookingTime {
		verr.Add("cooking_time", fmt.Sprintf("must be between %d and %d", entity.MinCookingTime, entity.MaxCookingTime))
	}
	if requireImage && strings.TrimSpace(in.Image) == "" {
		verr.Add("image", "is required")
	}

	rec := &entity.Recipe{Name: in.Name, Text: in.Text, CookingTime: in.CookingTime}

	if len(in.Ingredients) == 0 {
		verr.Add("ingredients", "at least one ingredient is required")
	} else {
		seen := make(map[int64]bool, len(in.Ingredients))
		ids := make([]int64, 0, len(in.Ingredients))
		for i, ia := range in.Ingredients {
			if seen[ia.ID] {
				verr.Add("ingredients", "ingredients must not repeat")
				continue
			}
			seen[ia.ID] = true
			ids = append(ids, ia.ID)
			if ia.Amount < entity.MinAmount || ia.Amount > entity.MaxAmount {
				verr.Add("ingredients["+strconv.Itoa(i)+"].amount",
					fmt.Sprintf("must be between %d and %d", entity.MinAmount, entity.MaxAmount))
			}
		}
		found, err := s.Store.Catalog.IngredientsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[int64]entity.Ingredient, len(found))
		for _, ing := range found {
			byID[ing.ID] = ing
		}
		for _, ia := range in.Ingredients {
			ing, ok := byID[ia.ID]
			if !ok {
				verr.Add("ingredients", fmt.Sprintf("ingredient %d does not exist", ia.ID))
				continue
			}
			if rec.HasIngredient(ia.ID) {
				continue
			}
			rec.Ingredients = append(rec.Ingredients, entity.RecipeIngredient{
				IngredientID:    ing.ID,
				Name:            ing.Name,
				MeasurementUnit: ing.MeasurementUnit,
				Amount:          ia.Amount,
			})
		}
	}

	if len(in.Tags) == 0 {
		verr.Add("tags", "at least one tag is required")
	} else {
		seen := make(map[int64]bool, len(in.Tags))
		for _, id := range in.Tags {
			if seen[id] {
				verr.Add("tags", "tags must not repeat")
			}
			seen[id] = true
		}
		tags, err := s.Store.Catalog.TagsByIDs(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		if len(tags) != len(seen) {
			verr.Add("tags", "some tags do not exist")
		}
		rec.Tags = tags
	}
	return rec, verr.OrNil()
}

func (s *RecipeService) Create(ctx context.Context, authorID int64, in RecipeInput) (*RecipeView, error) {
	rec, err := s.validate(ctx, &in, true)
	if err != nil {
		return nil, err
	}
	if rec.Image, err = storeImage(ctx, s.Images, authorID, in.Image); err != nil {
		return nil, err
	}
	rec.AuthorID = authorID
	if err := s.Store.Recipes.Create(ctx, rec); err != nil {
		removeImage(ctx, s.Images, s.Logger, rec.Image)
		return nil, storeError(err)
	}
	metricRecipesCreated.Add(1)

	saved, err := s.Store.Recipes.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	indexRecipe(ctx, s.Index, s.Logger, saved)
	s.notifyFollowers(ctx, saved)
	return s.view(ctx, authorID, saved)
}

// Update replaces the recipe wholesale. Invalid input, an empty ingredient
// list included, is rejected before the store is touched.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID int64, in RecipeInput) (*RecipeView, error) {
	current, err := s.owned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	rec, err := s.validate(ctx, &in, false)
	if err != nil {
		return nil, err
	}
	rec.ID = current.ID
	rec.AuthorID = current.AuthorID
	rec.Image = current.Image
	if strings.TrimSpace(in.Image) != "" {
		if rec.Image, err = storeImage(ctx, s.Images, current.AuthorID, in.Image); err != nil {
			return nil, err
		}
	}
	if err := s.Store.Recipes.Update(ctx, rec); err != nil {
		if rec.Image != current.Image {
			removeImage(ctx, s.Images, s.Logger, rec.Image)
		}
		return nil, storeError(err)
	}
	metricRecipesUpdated.Add(1)
	if rec.Image != current.Image {
		removeImage(ctx, s.Images, s.Logger, current.Image)
	}

	saved, err := s.Store.Recipes.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	indexRecipe(ctx, s.Index, s.Logger, saved)
	return s.view(ctx, userID, saved)
}

func (s *RecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	rec, err := s.owned(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if err := s.Store.Recipes.Delete(ctx, recipeID); err != nil {
		return storeError(err)
	}
	metricRecipesDeleted.Add(1)
	removeImage(ctx, s.Images, s.Logger, rec.Image)
	removeFromIndex(ctx, s.Index, s.Logger, recipeID)
	return nil
}

func (s *RecipeService) Get(ctx context.Context, viewerID, id int64) (*RecipeView, error) {
	rec, err := s.Store.Recipes.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("recipe not found")
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, viewerID, rec)
}

func (s *RecipeService) List(ctx context.Context, viewerID int64, q ListQuery) ([]RecipeView, int, error) {
	f := repo.RecipeFilter{AuthorID: q.AuthorID, TagSlugs: q.Tags, Limit: q.Limit, Offset: q.Offset}
	if q.Favorited || q.InCart {
		if viewerID == 0 {
			return []RecipeView{}, 0, nil
		}
		if q.Favorited {
			f.FavoritedBy = viewerID
		}
		if q.InCart {
			f.InCartOf = viewerID
		}
	}
	recipes, total, err := s.Store.Recipes.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	views, err := recipeViews(ctx, s.Store, viewerID, recipes)
	return views, total, err
}

// Search runs a full-text query. Hits whose recipe is gone are skipped.
func (s *RecipeService) Search(ctx context.Context, viewerID int64, query string, limit, offset int) ([]RecipeView, int, error) {
	if s.Index == nil {
		return nil, 0, unavailable("search is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, fieldError("q", "is required")
	}
	ids, total, err := s.Index.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search recipes: %w", err)
	}
	recipes := make([]entity.Recipe, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Store.Recipes.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		recipes = append(recipes, *rec)
	}
	views, err := recipeViews(ctx, s.Store, viewerID, recipes)
	return views, total, err
}

// owned loads a recipe and checks that userID is its author.
func (s *RecipeService) owned(ctx context.Context, userID, recipeID int64) (*entity.Recipe, error) {
	rec, err := s.Store.Recipes.GetByID(ctx, recipeID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("recipe not found")
	}
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != userID {
		return nil, forbidden("only the author can change this recipe")
	}
	return rec, nil
}

func (s *RecipeService) view(ctx context.Context, viewerID int64, rec *entity.Recipe) (*RecipeView, error) {
	views, err := recipeViews(ctx, s.Store, viewerID, []entity.Recipe{*rec})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *RecipeService) notifyFollowers(ctx context.Context, rec *entity.Recipe) {
	if s.Jobs == nil {
		return
	}
	followers, err := s.Store.Follows.ListFollowers(ctx, rec.AuthorID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("author_id", rec.AuthorID).Warn("list followers failed")
		}
		return
	}
	if len(followers) == 0 {
		return
	}
	author, err := s.Store.Users.GetByID(ctx, rec.AuthorID)
	if err != nil {
		return
	}
	url := strings.TrimRight(s.SiteURL, "/") + "/recipes/" + strconv.FormatInt(rec.ID, 10)
	for _, f := range followers {
		data := mailtpl.ToMap(mailtpl.NewBaseEmailData(s.AppName, s.SiteURL, f.FullName(), f.Email,
			mailtpl.WithRecipe(author.FullName(), rec.Name, url)))
		publishEmail(ctx, s.Jobs, s.Logger, mailer.EmailJob{To: f.Email, Template: mailtpl.NewRecipe, Data: data})
	}
}

// storeError maps storage errors that slipped past validation, such as an
// ingredient deleted concurrently.
func storeError(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return badRequest("referenced ingredient, tag or recipe no longer exists")
	case errors.Is(err, repo.ErrDuplicate):
		return badRequest("ingredients and tags must not repeat")
	default:
		return err
	}
}
