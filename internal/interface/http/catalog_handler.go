package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/pkg/response"
)

// CatalogHandler serves the read-only tag and ingredient dictionaries.
type CatalogHandler struct {
	Svc    *app.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *app.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

// Tags GET /api/tags
func (h *CatalogHandler) Tags(c *gin.Context) {
	tags, err := h.Svc.Tags(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tags, "tags", nil)
}

// Tag GET /api/tags/:id
func (h *CatalogHandler) Tag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.Svc.Tag(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tag, "tag", nil)
}

// Ingredients GET /api/ingredients?name=
func (h *CatalogHandler) Ingredients(c *gin.Context) {
	items, err := h.Svc.Ingredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "ingredients", nil)
}

// Ingredient GET /api/ingredients/:id
func (h *CatalogHandler) Ingredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.Svc.Ingredient(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, item, "ingredient", nil)
}
