package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_user_store.go -package=mocks devnotes/internal/storage UserStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("record already exists")

// UserStore defines the interface for account storage operations.
type UserStore interface {
	// Create inserts a new user, assigning ID and CreatedAt.
	// Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *UserRecord) error
	// GetByEmail returns ErrNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	// GetByID returns ErrNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	// UpdateUsername changes the display name.
	UpdateUsername(ctx context.Context, id, username string) error
	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// UserRepo provides methods for user operations.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *UserRecord) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, formatTimestamp(user.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return r.getOne(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*UserRecord, error) {
	return r.getOne(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (r *UserRepo) UpdateUsername(ctx context.Context, id, username string) error {
	return r.updateOne(ctx, "UPDATE users SET username = ? WHERE id = ?", username, id)
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.updateOne(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*UserRecord, error) {
	var user UserRecord
	var createdAtStr string

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) updateOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
