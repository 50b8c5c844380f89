package mocks

import (
	"context"
	"time"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/domain"
	"github.com/stretchr/testify/mock"
)

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	if profile != nil && args.Error(0) == nil {
		profile.CreatedAt = time.Now()
		profile.UpdatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockProfileRepository) GetProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) HasAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}
