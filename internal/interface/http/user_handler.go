package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/pagination"
	"github.com/oksasatya/foodgram-api/pkg/response"
)

type UserHandler struct {
	Users     *app.UserService
	Relations *app.RelationService
	Logger    *logrus.Logger
	Cookies   *helpers.CookieJar
	PageSize  int
}

func NewUserHandler(users *app.UserService, relations *app.RelationService, logger *logrus.Logger, cookies *helpers.CookieJar, pageSize int) *UserHandler {
	return &UserHandler{Users: users, Relations: relations, Logger: logger, Cookies: cookies, PageSize: pageSize}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,pwd"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

// Register POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.Users.Register(c.Request.Context(), app.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, v, "user registered", nil)
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	p := pagination.FromQuery(c.Request.URL.Query(), h.PageSize)
	users, total, err := h.Users.List(c.Request.Context(), currentUser(c), p.Limit, p.Offset())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(requestURL(c), p, total, users), "users", nil)
}

// Get GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.Users.Profile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "user", nil)
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	v, err := h.Users.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "profile", nil)
}

// DeleteMe DELETE /api/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), currentUser(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.NoContent(c)
}

// SetPassword POST /api/users/set_password
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Users.SetPassword(c.Request.Context(), currentUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// Subscriptions GET /api/users/subscriptions
func (h *UserHandler) Subscriptions(c *gin.Context) {
	p := pagination.FromQuery(c.Request.URL.Query(), h.PageSize)
	subs, total, err := h.Relations.Subscriptions(c.Request.Context(), currentUser(c), p.Limit, p.Offset(), recipesLimit(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(requestURL(c), p, total, subs), "subscriptions", nil)
}

// Subscribe POST /api/users/:id/subscribe
func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.Relations.Subscribe(c.Request.Context(), currentUser(c), id, recipesLimit(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, v, "subscribed", nil)
}

// Unsubscribe DELETE /api/users/:id/subscribe
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Relations.Unsubscribe(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// recipesLimit reads ?recipes_limit; absent or invalid means all recipes.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
