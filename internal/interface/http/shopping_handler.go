package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/pkg/response"
)

type ShoppingHandler struct {
	Svc    *app.ShoppingService
	Logger *logrus.Logger
}

func NewShoppingHandler(svc *app.ShoppingService, logger *logrus.Logger) *ShoppingHandler {
	return &ShoppingHandler{Svc: svc, Logger: logger}
}

// Download GET /api/recipes/download_shopping_cart
func (h *ShoppingHandler) Download(c *gin.Context) {
	text, err := h.Svc.Text(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+app.ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// Items GET /api/recipes/shopping_cart
func (h *ShoppingHandler) Items(c *gin.Context) {
	items, err := h.Svc.Views(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "shopping list", nil)
}

// Send POST /api/recipes/send_shopping_cart
func (h *ShoppingHandler) Send(c *gin.Context) {
	if err := h.Svc.SendByEmail(c.Request.Context(), currentUser(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusAccepted, nil, "shopping list queued for delivery", nil)
}
