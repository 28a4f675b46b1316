package user

import (
	"context"
	"sync"
	"testing"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"golang.org/x/crypto/bcrypt"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: map[string]*User{}}
}

func (m *memoryRepository) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.New(apperr.Conflict, "a user with this email already exists")
		}
	}
	m.users[u.ID.String()] = u
	return nil
}

func (m *memoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (m *memoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (m *memoryRepository) ListUsers(ctx context.Context) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	svc := NewService(repo)

	u, err := svc.RegisterUser(ctx, "  Dana@Example.com ", "correct-horse", "Dana Levi", "")
	if err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	if u.Email != "dana@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.Role != RoleHandler {
		t.Errorf("expected default role handler, got %q", u.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")) != nil {
		t.Error("stored hash does not match password")
	}

	_, err = svc.RegisterUser(ctx, "dana@example.com", "another-password", "", RoleAdmin)
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	svc := NewService(newMemoryRepository())

	tests := []struct {
		name     string
		email    string
		password string
		role     Role
	}{
		{"bad email", "not-an-email", "long-enough-pw", RoleAdmin},
		{"short password", "a@b.com", "short", RoleAdmin},
		{"unknown role", "a@b.com", "long-enough-pw", Role("vendor")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterUser(context.Background(), tt.email, tt.password, "", tt.role)
			if !apperr.Is(err, apperr.Validation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
