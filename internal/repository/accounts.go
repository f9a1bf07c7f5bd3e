package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"kassa/internal/database"
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, first_name, last_name, role, phone, member, member_id, member_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Role,
		account.Phone,
		account.Member,
		account.MemberID,
		account.MemberVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.ErrDuplicateEmail
	}

	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, phone,
		       member, member_id, member_verified, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.Role,
		&account.Phone,
		&account.Member,
		&account.MemberID,
		&account.MemberVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return account, err
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, phone,
		       member, member_id, member_verified, created_at, updated_at
		FROM accounts
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.Role,
		&account.Phone,
		&account.Member,
		&account.MemberID,
		&account.MemberVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return account, err
}

// Update persists the mutable profile fields. Email and role are managed
// elsewhere and never touched here.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, first_name = $2, last_name = $3, phone = $4,
		    member = $5, member_id = $6, member_verified = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	return r.db.QueryRowContext(ctx, query,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Member,
		account.MemberID,
		account.MemberVerified,
		account.ID,
	).Scan(&account.UpdatedAt)
}
