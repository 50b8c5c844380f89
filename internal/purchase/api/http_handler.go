package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/purchase/service"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(ps service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: ps}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sweets/:id/purchase", identity.RequireAuth(), h.Purchase)
}

func (h *PurchaseHandler) Purchase(c *gin.Context) {
	sess := identity.SessionFromContext(c)
	err := h.purchaseService.Purchase(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrOutOfStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Purchase: service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete purchase"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase successful"})
}
