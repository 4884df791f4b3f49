package services

import (
	"context"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

type UserService struct {
	repo domain.UserRepository
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// UpdateProfileInput leaves a field unchanged when it is nil.
type UpdateProfileInput struct {
	UserID   string
	Username *string
	Timezone *string
	Password *string
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		name := strings.TrimSpace(*input.Username)
		if name == "" {
			return nil, domain.ErrUsernameEmpty
		}
		user.Username = name
	}

	if input.Timezone != nil {
		tz, err := domain.NormalizeTimezone(*input.Timezone)
		if err != nil {
			return nil, err
		}
		user.Timezone = tz
	}

	if input.Password != nil {
		if err := user.SetPassword(*input.Password); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
