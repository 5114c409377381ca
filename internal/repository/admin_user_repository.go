// internal/repository/admin_user_repository.go
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

type AdminUserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	FindByID(ctx context.Context, id string) (*model.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id string) error
	Upsert(ctx context.Context, u *model.AdminUser) error
}

type AdminUserRepository struct {
	DB *sql.DB
}

const adminColumns = "id, email, password_hash, name, role, last_login, created_at"

func scanAdmin(s scanner) (*model.AdminUser, error) {
	var u model.AdminUser
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.LastLogin, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail returns nil, nil for an unknown address.
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	u, err := scanAdmin(r.DB.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE email=$1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find admin by email")
	}
	return u, nil
}

func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (*model.AdminUser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewNotFound("User", id)
	}
	u, err := scanAdmin(r.DB.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("User", id)
		}
		return nil, errors.Wrap(err, "find admin by id")
	}
	return u, nil
}

func (r *AdminUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE admin_users SET last_login=NOW() WHERE id=$1`, id)
	return errors.Wrap(err, "update last login")
}

// Upsert creates the admin or replaces the password, name and role of an
// existing one with the same email.
func (r *AdminUserRepository) Upsert(ctx context.Context, u *model.AdminUser) error {
	if u.Role == "" {
		u.Role = model.RoleAdmin
	}
	query := `
		INSERT INTO admin_users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET password_hash=EXCLUDED.password_hash, name=EXCLUDED.name, role=EXCLUDED.role
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, uuid.NewString(), u.Email, u.PasswordHash, u.Name, u.Role).
		Scan(&u.ID, &u.CreatedAt)
	return errors.Wrap(err, "upsert admin")
}

var _ AdminUserRepositoryInterface = (*AdminUserRepository)(nil)
