package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/service"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/storage"
)

// ImageStore is the slice of the object storage client the admin image
// upload needs.
type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

type CatalogHandler struct {
	catalogService service.CatalogService
	images         ImageStore
}

func NewCatalogHandler(cs service.CatalogService, images ImageStore) *CatalogHandler {
	return &CatalogHandler{catalogService: cs, images: images}
}

// RegisterPublicRoutes mounts the unauthenticated catalog read.
func (h *CatalogHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/sweets", h.ListProducts)
}

// RegisterAdminRoutes mounts the product mutations; the caller is
// expected to guard the group with the admin middleware.
func (h *CatalogHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.POST("", h.CreateProduct)
		productRoutes.PUT("/:id", h.UpdateProduct)
		productRoutes.DELETE("/:id", h.DeleteProduct)
	}
	router.POST("/images", h.UploadImage)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		logger.Error("ListProducts: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req domain.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	sess := identity.SessionFromContext(c)
	product, err := h.catalogService.CreateProduct(c.Request.Context(), sess, req)
	if err != nil {
		h.writeMutationError(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req domain.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	sess := identity.SessionFromContext(c)
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		h.writeMutationError(c, "UpdateProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	sess := identity.SessionFromContext(c)
	if err := h.catalogService.DeleteProduct(c.Request.Context(), sess, c.Param("id")); err != nil {
		h.writeMutationError(c, "DeleteProduct", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadImage pushes a product image to the hosted object storage and
// returns its public URL for use in a product's image_url field.
func (h *CatalogHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file: " + err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("UploadImage: failed to open multipart file", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read image file"})
		return
	}
	defer file.Close()

	objectName := storage.ObjectName(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.images.Upload(c.Request.Context(), objectName, contentType, file)
	if err != nil {
		var sErr *storage.StorageError
		if errors.As(err, &sErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": sErr.Message})
			return
		}
		logger.Error("UploadImage: storage error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h *CatalogHandler) writeMutationError(c *gin.Context, op string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error(op+": service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op})
	}
}
