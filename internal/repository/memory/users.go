package memory

import (
	"context"
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

type userStore struct {
	s *Store
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.OTPCode != nil {
		code := *u.OTPCode
		c.OTPCode = &code
	}
	if u.OTPExpires != nil {
		exp := *u.OTPExpires
		c.OTPExpires = &exp
	}
	if u.LastLogin != nil {
		last := *u.LastLogin
		c.LastLogin = &last
	}
	return &c
}

func (r *userStore) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.phones[user.Phone]; taken {
		return repository.ErrDuplicate
	}
	if user.Email != "" {
		if _, taken := r.s.emails[user.Email]; taken {
			return repository.ErrDuplicate
		}
	}
	now := r.s.clock.Now()
	user.ID = newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.insertLocked(cloneUser(user))
	return nil
}

func (r *userStore) insertLocked(user *domain.User) {
	r.s.users[user.ID] = user
	r.s.userOrder = append(r.s.userOrder, user.ID)
	r.s.phones[user.Phone] = user.ID
	if user.Email != "" {
		r.s.emails[user.Email] = user.ID
	}
}

func (r *userStore) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.moveEmailLocked(current, user.Email); err != nil {
		return err
	}
	current.Name = user.Name
	current.Username = user.Username
	current.Address = user.Address
	current.UpdatedAt = r.s.clock.Now()
	user.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *userStore) CompleteProfile(_ context.Context, user *domain.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok || !current.Verified || current.IsRegistered() {
		return false, nil
	}
	if err := r.moveEmailLocked(current, user.Email); err != nil {
		return false, err
	}
	current.Name = user.Name
	current.Username = user.Username
	current.PasswordHash = user.PasswordHash
	current.Address = user.Address
	current.UpdatedAt = r.s.clock.Now()
	user.UpdatedAt = current.UpdatedAt
	return true, nil
}

// moveEmailLocked reindexes current under email, rejecting one owned by another user.
func (r *userStore) moveEmailLocked(current *domain.User, email string) error {
	if email != "" {
		if owner, taken := r.s.emails[email]; taken && owner != current.ID {
			return repository.ErrDuplicate
		}
	}
	if current.Email != "" {
		delete(r.s.emails, current.Email)
	}
	if email != "" {
		r.s.emails[email] = current.ID
	}
	current.Email = email
	return nil
}

func (r *userStore) SetPasswordHash(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *userStore) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.phones[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *userStore) List(_ context.Context, limit, offset int) ([]domain.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := page(r.s.userOrder, limit, offset)
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, *cloneUser(r.s.users[id]))
	}
	return users, len(r.s.userOrder), nil
}

func (r *userStore) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Active = active
	user.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *userStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLogin = &at
	user.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *userStore) SetOTP(_ context.Context, phone, code string, expires time.Time) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.phones[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.s.users[id]
	user.OTPCode = &code
	user.OTPExpires = &expires
	user.UpdatedAt = r.s.clock.Now()
	return cloneUser(user), nil
}

func (r *userStore) CreatePending(_ context.Context, phone, code string, expires time.Time) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.phones[phone]; taken {
		return nil, repository.ErrDuplicate
	}
	now := r.s.clock.Now()
	user := &domain.User{
		ID:         newID(),
		Phone:      phone,
		Role:       domain.RoleUser,
		Active:     true,
		OTPCode:    &code,
		OTPExpires: &expires,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.insertLocked(user)
	return cloneUser(user), nil
}

func (r *userStore) ConsumeOTP(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	if user.OTPCode == nil || *user.OTPCode != code || user.OTPExpired(now) {
		return false, nil
	}
	user.OTPCode = nil
	user.OTPExpires = nil
	user.Verified = true
	user.LastLogin = &now
	user.UpdatedAt = r.s.clock.Now()
	return true, nil
}

func (r *userStore) ClearOTP(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[id]; ok {
		user.OTPCode = nil
		user.OTPExpires = nil
		user.UpdatedAt = r.s.clock.Now()
	}
	return nil
}
