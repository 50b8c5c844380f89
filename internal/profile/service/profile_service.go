package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/repository"
)

var ErrInvalidRole = errors.New("role must be admin or customer")

// ProfileService resolves the application-level user record for an auth
// provider user id. Role lookups happen on every request that needs
// authorization; session validity and role are separate checks.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	GetRole(ctx context.Context, userID string) (domain.Role, error)
	CreateProfile(ctx context.Context, userID, email, fullName string, role domain.Role) (*domain.Profile, error)
	HasAdmin(ctx context.Context) (bool, error)
}

type profileServiceImpl struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileServiceImpl{repo: repo}
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.repo.GetProfileByID(ctx, userID)
}

func (s *profileServiceImpl) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	profile, err := s.repo.GetProfileByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}

func (s *profileServiceImpl) CreateProfile(ctx context.Context, userID, email, fullName string, role domain.Role) (*domain.Profile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	profile := &domain.Profile{
		ID:       userID,
		Email:    strings.TrimSpace(strings.ToLower(email)),
		FullName: strings.TrimSpace(fullName),
		Role:     role,
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			return nil, err
		}
		logger.Error("CreateProfile: failed to create profile in repo", err)
		return nil, fmt.Errorf("could not save profile: %w", err)
	}
	return profile, nil
}

func (s *profileServiceImpl) HasAdmin(ctx context.Context) (bool, error) {
	return s.repo.HasAdmin(ctx)
}
