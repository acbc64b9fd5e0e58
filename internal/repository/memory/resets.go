package memory

import (
	"context"
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

type resetStore struct {
	s *Store
}

func (r *resetStore) Create(_ context.Context, token *domain.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.resetByHash[token.TokenHash]; taken {
		return repository.ErrDuplicate
	}
	token.ID = newID()
	token.CreatedAt = r.s.clock.Now()
	stored := *token
	r.s.resets[token.ID] = &stored
	r.s.resetByHash[token.TokenHash] = token.ID
	return nil
}

func (r *resetStore) GetByTokenHash(_ context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.resetByHash[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	token := *r.s.resets[id]
	return &token, nil
}

func (r *resetStore) MarkUsed(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token, ok := r.s.resets[id]
	if !ok || token.UsedAt != nil {
		return repository.ErrNotFound
	}
	token.UsedAt = &at
	return nil
}
