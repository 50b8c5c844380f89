package service

import (
	"context"
	"errors"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
)

var ErrUnauthenticated = errors.New("sign in required to purchase")

// PurchaseService sells exactly one unit of one product per call. The
// check-and-decrement is a single conditional write at the storage
// layer, never a read followed by a separate write: this process holds
// no locks, and multiple server instances may run concurrently.
type PurchaseService interface {
	Purchase(ctx context.Context, sess identity.Session, productID string) error
}

type purchaseServiceImpl struct {
	products repository.ProductRepository
}

func NewPurchaseService(products repository.ProductRepository) PurchaseService {
	return &purchaseServiceImpl{products: products}
}

// Purchase requires an authenticated session; both customers and admins
// may buy. Either stock drops by exactly one and the purchase succeeds,
// or nothing changes.
func (s *purchaseServiceImpl) Purchase(ctx context.Context, sess identity.Session, productID string) error {
	if !sess.Authenticated() {
		return ErrUnauthenticated
	}

	err := s.products.DecrementStock(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrOutOfStock) || errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		logger.Error("Purchase: decrement failed for product "+productID, err)
		return err
	}

	logger.Info("Purchase: user %s bought one unit of product %s", sess.UserID, productID)
	return nil
}
