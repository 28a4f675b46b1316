package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL admin account repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const selectUser = `SELECT id, email, password_hash, full_name, role, created_at, updated_at FROM admin_users`

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.FullName, user.Role).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperr.Wrap(apperr.Conflict, "a user with this email already exists", err)
	}
	return apperr.FromStore(err, "user not found")
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectUser+` WHERE email = $1`, strings.ToLower(email)))
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
	}
	return r.scan(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, parsedID))
}

func (r *postgresRepository) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY full_name, email`)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, apperr.FromStore(err, "")
		}
		users = append(users, u)
	}
	return users, apperr.FromStore(rows.Err(), "")
}

func (r *postgresRepository) scan(row *sql.Row) (*User, error) {
	u, err := scanUser(row.Scan)
	if err != nil {
		return nil, apperr.FromStore(err, "user not found")
	}
	return u, nil
}

func scanUser(scan func(...interface{}) error) (*User, error) {
	user := &User{}
	err := scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
