package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 10

// Service defines the interface for admin account business logic.
type Service interface {
	RegisterUser(ctx context.Context, email, password, fullName string, role Role) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

type service struct {
	repo Repository
}

// NewService creates a new admin account service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterUser(ctx context.Context, email, password, fullName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid email address", err)
	}
	if len(password) < minPasswordLength {
		return nil, apperr.New(apperr.Validation, "password must be at least 10 characters")
	}
	if role == "" {
		role = RoleHandler
	}
	if role != RoleAdmin && role != RoleHandler {
		return nil, apperr.New(apperr.Validation, "role must be admin or handler")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}
