package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkarpov/manufacturer-api/internal/utils"
)

// User mirrors the 'users' table.  PasswordHash never leaves the server.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create is the only way a User comes into existence: it trims the
// username, hashes the plaintext password and inserts the record.  The
// hash is computed here and nowhere else.
func (r *UserRepo) Create(ctx context.Context, username, password string, cost int) (User, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, password_hash, created_at, updated_at) VALUES (?,?,?,?,?)",
		u.ID, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return User{}, ErrUsernameExists
		}
		return User{}, err
	}
	return u, nil
}

// GetByUsername fetches a user by trimmed username.  sql.ErrNoRows passes
// through so the caller can respond identically for unknown users and
// wrong passwords.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
