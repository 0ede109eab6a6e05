package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) ports.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		string(account.ID),
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAccount
		}
		if isPermissionDenied(err) {
			return domain.ErrPermissionDenied
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE email = ?
	`

	var (
		account domain.Account
		id      string
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&id, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	account.ID = domain.AccountID(id)
	return &account, nil
}
