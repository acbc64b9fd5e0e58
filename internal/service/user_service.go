package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const defaultUserPageSize = 20

// UserService manages profiles and admin account actions.
type UserService struct {
	users repository.UserRepository
}

// ProfileUpdate carries optional profile changes.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Username *string
	Address  *domain.Address
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get returns an account by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update to the caller's account.
// Accounts that have not completed registration must do that first.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsRegistered() {
		return nil, apperrors.NewForbidden("complete registration first")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"name": "required"})
		}
		user.Name = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if !validEmail(email) {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": "must be a valid email"})
		}
		user.Email = email
	}
	if update.Username != nil {
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Address != nil {
		user.Address = *update.Address
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": user.Email})
		}
		return nil, err
	}
	return user, nil
}

// List returns accounts, newest first.
func (s *UserService) List(ctx context.Context, page, limit int) (Page[domain.User], error) {
	page, limit, offset := window(page, limit, defaultUserPageSize)
	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return Page[domain.User]{}, err
	}
	return Page[domain.User]{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// Deactivate disables an account so it can no longer authenticate. Admins cannot
// deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperrors.NewForbidden("cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return err
	}
	return nil
}
