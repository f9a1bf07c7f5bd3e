package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"kassa/internal/auth"
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

type AccountService struct {
	accounts AccountStore
	issuer   *auth.TokenIssuer
}

func NewAccountService(accounts AccountStore, issuer *auth.TokenIssuer) *AccountService {
	return &AccountService{
		accounts: accounts,
		issuer:   issuer,
	}
}

// Register creates the account and returns a fresh session token. The role
// is always `user`; privileged roles are granted out of band.
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		Phone:        req.Phone,
		Member:       req.Member,
		MemberID:     req.MemberID,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return s.issueToken(account)
}

// Login checks the credentials. Unknown email and wrong password produce the
// same error so the response does not leak which emails are registered.
func (s *AccountService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueToken(account)
}

// Update applies a partial self-update. Email and role are not updatable
// here and any supplied values are dropped without error.
func (s *AccountService) Update(ctx context.Context, account *models.Account, req *models.UpdateAccountRequest) (*models.Account, error) {
	if req.FirstName != nil {
		account.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		account.LastName = *req.LastName
	}
	if req.Phone != nil {
		account.Phone = req.Phone
	}
	if req.Member != nil {
		account.Member = *req.Member
	}
	if req.MemberID != nil {
		account.MemberID = req.MemberID
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return account, nil
}

// VerifyMembership records the membership id and marks the account verified.
// Accounts not flagged as members are rejected.
func (s *AccountService) VerifyMembership(ctx context.Context, account *models.Account, req *models.MemberVerifyRequest) (*models.Account, error) {
	if !account.Member {
		return nil, apperrors.ErrNotMember
	}

	account.MemberID = &req.MemberID
	account.MemberVerified = true

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return account, nil
}

func (s *AccountService) issueToken(account *models.Account) (*models.TokenResponse, error) {
	token, err := s.issuer.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        account,
	}, nil
}
