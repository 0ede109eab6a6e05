package memory

import (
	"context"
	"sync"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

type MemoryAccountRepository struct {
	accounts map[string]*domain.Account // keyed by email
	mu       sync.RWMutex
}

func NewMemoryAccountRepository() ports.AccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Email]; exists {
		return domain.ErrDuplicateAccount
	}

	copied := *account
	r.accounts[account.Email] = &copied
	return nil
}

func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[email]
	if !exists {
		return nil, domain.ErrAccountNotFound
	}

	copied := *account
	return &copied, nil
}
