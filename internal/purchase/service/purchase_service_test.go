package service

import (
	"context"
	"sync"
	"testing"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository/mocks"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var buyerSess = identity.Session{Kind: identity.SessionCustomer, UserID: "cust-1"}

func TestPurchaseService_Purchase(t *testing.T) {
	ctx := context.TODO()

	t.Run("Anonymous caller is rejected without touching stock", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewPurchaseService(mockRepo)

		err := svc.Purchase(ctx, identity.Session{Kind: identity.SessionAnonymous}, "p1")

		assert.ErrorIs(t, err, ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything)
	})

	t.Run("Unknown product returns not found and mutates nothing", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewPurchaseService(mockRepo)
		mockRepo.On("DecrementStock", ctx, "missing").Return(repository.ErrProductNotFound).Once()

		err := svc.Purchase(ctx, buyerSess, "missing")

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Admin may also purchase", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewPurchaseService(mockRepo)
		mockRepo.On("DecrementStock", ctx, "p1").Return(nil).Once()

		err := svc.Purchase(ctx, identity.Session{Kind: identity.SessionAdmin, UserID: "admin-1"}, "p1")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Three units drain one by one, fourth call is out of stock", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewPurchaseService(mockRepo)
		mockRepo.On("DecrementStock", ctx, "p1").Return(nil).Times(3)
		mockRepo.On("DecrementStock", ctx, "p1").Return(repository.ErrOutOfStock).Once()

		for i := 0; i < 3; i++ {
			assert.NoError(t, svc.Purchase(ctx, buyerSess, "p1"))
		}
		assert.ErrorIs(t, svc.Purchase(ctx, buyerSess, "p1"), repository.ErrOutOfStock)
		mockRepo.AssertExpectations(t)
	})
}

// stockRepo is an in-memory stand-in whose DecrementStock has the same
// atomic check-and-decrement contract as the conditional UPDATE in the
// Postgres repository.
type stockRepo struct {
	mu    sync.Mutex
	stock map[string]int
}

func newStockRepo(stock map[string]int) *stockRepo {
	return &stockRepo{stock: stock}
}

func (r *stockRepo) DecrementStock(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	units, ok := r.stock[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if units == 0 {
		return repository.ErrOutOfStock
	}
	r.stock[id] = units - 1
	return nil
}

func (r *stockRepo) remaining(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[id]
}

func (r *stockRepo) ListProducts(ctx context.Context) ([]domain.Product, error) { return nil, nil }
func (r *stockRepo) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return nil, repository.ErrProductNotFound
}
func (r *stockRepo) CreateProduct(ctx context.Context, p *domain.Product) error { return nil }
func (r *stockRepo) UpdateProduct(ctx context.Context, p *domain.Product) error { return nil }
func (r *stockRepo) DeleteProduct(ctx context.Context, id string) error         { return nil }

func TestPurchaseService_ConcurrentPurchasesForLastUnit(t *testing.T) {
	const buyers = 8
	repo := newStockRepo(map[string]int{"p1": 1})
	svc := NewPurchaseService(repo)
	ctx := context.TODO()

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Purchase(ctx, buyerSess, "p1")
		}()
	}
	wg.Wait()
	close(results)

	successes, outOfStock := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, repository.ErrOutOfStock):
			outOfStock++
		}
	}

	assert.Equal(t, 1, successes, "exactly one purchaser may take the last unit")
	assert.Equal(t, buyers-1, outOfStock)
	assert.Equal(t, 0, repo.remaining("p1"))
}
