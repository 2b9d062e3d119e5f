package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/licitabrasil/internal/model"
)

// MemoryUserRepository keeps users for the lifetime of the process; used when
// no database is configured.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.CNPJ]; exists {
		return ErrDuplicate
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.CNPJ] = *user
	return nil
}

func (r *MemoryUserRepository) GetByCNPJ(_ context.Context, cnpj string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[cnpj]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}
