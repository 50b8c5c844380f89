package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	"github.com/shopspring/decimal"
)

var ErrForbidden = errors.New("admin privileges required")

// CatalogService owns product records. Listing is public; every
// mutation takes the caller's session and rejects non-admins, on top of
// whatever route middleware already checked.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, sess identity.Session, req domain.ProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, sess identity.Session, id string, req domain.ProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, sess identity.Session, id string) error
}

type catalogServiceImpl struct {
	repo repository.ProductRepository
}

func NewCatalogService(repo repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{repo: repo}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, sess identity.Session, req domain.ProductRequest) (*domain.Product, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}

	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		logger.Error("CreateProduct: repo error", err)
		return nil, fmt.Errorf("could not save product: %w", err)
	}
	return product, nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, sess identity.Session, id string, req domain.ProductRequest) (*domain.Product, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}

	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return nil, err
		}
		logger.Error("UpdateProduct: repo error", err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}
	return product, nil
}

func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, sess identity.Session, id string) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.DeleteProduct(ctx, id)
}

// productFromRequest validates the admin payload and builds the record.
// Violations name the offending field.
func productFromRequest(req domain.ProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, &domain.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return nil, &domain.ValidationError{Field: "price", Reason: "must be a decimal number"}
	}
	if price.IsNegative() {
		return nil, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}

	category := domain.Category(req.Category)
	if !category.Valid() {
		return nil, &domain.ValidationError{Field: "category", Reason: "must be one of candy, chocolate, cake, cupcake"}
	}

	if req.Stock < 0 {
		return nil, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}

	return &domain.Product{
		Name:             name,
		Description:      description,
		Price:            price,
		Category:         category,
		ImageURL:         req.ImageURL,
		PlaceholderGlyph: req.PlaceholderGlyph,
		Stock:            req.Stock,
	}, nil
}
