// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `
	id, email, name, password_hash, telegram, role, status, is_blocked,
	last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Telegram,
		&u.Role, &u.Status, &u.IsBlocked,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT"+userColumns+" FROM users WHERE email = $1", email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByTelegram retrieves a user by their telegram handle. Returns nil if not found.
func (s *UserStore) FindByTelegram(ctx context.Context, telegram string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT"+userColumns+" FROM users WHERE telegram = $1", telegram))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by telegram: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT"+userColumns+" FROM users WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// List returns users ordered by creation date, optionally filtered by
// status and role.
func (s *UserStore) List(ctx context.Context, status models.UserStatus, role models.Role) ([]models.User, error) {
	query := "SELECT" + userColumns + " FROM users"
	var (
		where []string
		args  []any
	)
	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if role != "" {
		args = append(args, role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new user and returns the stored record. Email or
// telegram collisions return ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash, telegram, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Email, u.Name, u.PasswordHash, u.Telegram, u.Role, u.Status).Scan(&id)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.FindByID(ctx, id)
}

// SetStatus updates the approval status of an account.
func (s *UserStore) SetStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	return nil
}

// SetBlocked updates the block flag of an account.
func (s *UserStore) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_blocked = $1, updated_at = NOW() WHERE id = $2", blocked, id)
	if err != nil {
		return fmt.Errorf("set user blocked: %w", err)
	}
	return nil
}

// ProfileUpdate carries the optional fields of an admin "update" action.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	Role         *models.Role
	PasswordHash *string
}

// UpdateProfile applies a partial profile update. An email collision
// returns ErrConflict.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			role = COALESCE($3, role),
			password_hash = COALESCE($4, password_hash),
			updated_at = NOW()
		WHERE id = $5
	`, p.Name, p.Email, p.Role, p.PasswordHash, id)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

// SetPasswordHash replaces the stored password hash.
func (s *UserStore) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2", hash, id)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	return nil
}

// StampLastLogin records a successful sign-in.
func (s *UserStore) StampLastLogin(ctx context.Context, id uuid.UUID, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login_at = $1 WHERE id = $2", t, id)
	if err != nil {
		return fmt.Errorf("stamp last login: %w", err)
	}
	return nil
}

// Delete removes a user by ID. The admin-target protection rule is
// enforced by the caller before this is reached.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Count returns the total number of users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// CountCreatedSince returns how many users registered at or after t.
func (s *UserStore) CountCreatedSince(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE created_at >= $1", t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users since: %w", err)
	}
	return count, nil
}
