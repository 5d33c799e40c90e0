package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/mailer"
	mailtpl "github.com/oksasatya/foodgram-api/pkg/mailer/templates"
	"github.com/oksasatya/foodgram-api/pkg/validation"
)

const sessionTTL = 24 * time.Hour

// UserService handles accounts, sessions and profiles.
type UserService struct {
	Store  repo.Store
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
	Jobs   JobPublisher
	Index  RecipeIndex

	AppName string
	SiteURL string
}

type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expires_at"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expires_at"`
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewUserService(store repo.Store, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{Store: store, JWT: jwt, Redis: rdb, Logger: logger}
}

// Register creates an account. Duplicate email or username is reported as
// a field error, whether caught by the lookup or by the unique index.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	verr := &ValidationError{}
	if !validation.ValidUsername(in.Username) {
		verr.Add("username", "may contain only letters, digits and @/./+/-/_ and must not be \"me\"")
	}
	switch {
	case len(in.Password) < 8:
		verr.Add("password", "must be at least 8 characters long")
	case len(in.Password) > helpers.MaxPasswordBytes:
		verr.Add("password", helpers.ErrPasswordTooLong.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if taken, err := s.Store.Users.ExistsEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		verr.Add("email", "a user with this email already exists")
	}
	if taken, err := s.Store.Users.ExistsUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		verr.Add("username", "a user with this username already exists")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hash,
	}
	if err := s.Store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			if strings.Contains(err.Error(), "username") {
				return nil, fieldError("username", "a user with this username already exists")
			}
			return nil, fieldError("email", "a user with this email already exists")
		}
		return nil, err
	}
	metricUsersRegistered.Add(1)

	data := mailtpl.ToMap(mailtpl.NewBaseEmailData(s.AppName, s.SiteURL, u.FullName(), u.Email))
	publishEmail(ctx, s.Jobs, s.Logger, mailer.EmailJob{To: u.Email, Template: mailtpl.Welcome, Data: data})

	v := toUserView(u, false)
	return &v, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Store.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}
	s.saveSession(ctx, u.ID, map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"sid":        sid,
		"created_at": nowRFC3339(),
	})
	return pair, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*UserView, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	v := toUserView(u, false)
	return &v, pair, nil
}

// Refresh rotates the session id and both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, int64, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, 0, ErrInvalidCredentials
	}
	u, err := s.Store.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, 0, ErrInvalidCredentials
	}
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, helpers.SessionKey(u.ID), "sid").Result()
		if rErr != nil || sid != claims.SessionID {
			return TokenPair{}, 0, ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		return TokenPair{}, 0, err
	}
	s.saveSession(ctx, u.ID, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
	return pair, u.ID, nil
}

// Logout drops the session so outstanding tokens stop authenticating.
func (s *UserService) Logout(ctx context.Context, userID int64) {
	s.dropSession(ctx, userID)
}

func (s *UserService) tokens(userID int64, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *UserService) saveSession(ctx context.Context, userID int64, fields map[string]any) {
	if s.Redis == nil {
		return
	}
	key := helpers.SessionKey(userID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}

func (s *UserService) dropSession(ctx context.Context, userID int64) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, helpers.SessionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("redis session delete failed")
	}
}

// Profile returns user id as seen by viewerID (0 for anonymous).
func (s *UserService) Profile(ctx context.Context, viewerID, id int64) (*UserView, error) {
	u, err := s.Store.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	subscribed := false
	if viewerID != 0 && viewerID != id {
		if subscribed, err = s.Store.Follows.IsFollowing(ctx, viewerID, id); err != nil {
			return nil, err
		}
	}
	v := toUserView(u, subscribed)
	return &v, nil
}

// Me is the caller's own profile.
func (s *UserService) Me(ctx context.Context, userID int64) (*UserView, error) {
	return s.Profile(ctx, 0, userID)
}

func (s *UserService) List(ctx context.Context, viewerID int64, limit, offset int) ([]UserView, int, error) {
	users, total, err := s.Store.Users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views, err := userViews(ctx, s.Store.Follows, viewerID, users)
	return views, total, err
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	recipeIDs, err := s.Store.Recipes.IDsByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Store.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("user not found")
		}
		return err
	}
	s.dropSession(ctx, userID)
	for _, id := range recipeIDs {
		removeFromIndex(ctx, s.Index, s.Logger, id)
	}
	return nil
}

func (s *UserService) SetPassword(ctx context.Context, userID int64, current, next string) error {
	u, err := s.Store.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("user not found")
	}
	if err != nil {
		return err
	}
	if !helpers.CheckPassword(u.Password, current) {
		return fieldError("current_password", "wrong password")
	}
	if len(next) < 8 {
		return fieldError("new_password", "must be at least 8 characters long")
	}
	if len(next) > helpers.MaxPasswordBytes {
		return fieldError("new_password", helpers.ErrPasswordTooLong.Error())
	}
	if next == current {
		return fieldError("new_password", "must differ from the current password")
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
