package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meterdesk/internal/domain"
)

const userColumns = `id, username, password_hash, role, full_name, department, position, is_active, created_at`

func (r *Repos) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+userColumns+` FROM app_users ORDER BY full_name, username`)
	return out, err
}

func (r *Repos) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM app_users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repos) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM app_users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repos) InsertUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	var out domain.User
	err := r.db.GetContext(ctx, &out,
		`INSERT INTO app_users (username, password_hash, role, full_name, department, position, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		u.Username, u.PasswordHash, u.Role, u.FullName, u.Department, u.Position, u.IsActive)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// UserUpdate carries optional field changes; nil means keep.
type UserUpdate struct {
	PasswordHash *string
	Role         *domain.Role
	FullName     *string
	Department   *string
	Position     *string
	IsActive     *bool
}

func (r *Repos) UpdateUser(ctx context.Context, id string, u UserUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.PasswordHash != nil {
		add("password_hash", *u.PasswordHash)
	}
	if u.Role != nil {
		add("role", string(*u.Role))
	}
	if u.FullName != nil {
		add("full_name", *u.FullName)
	}
	if u.Department != nil {
		add("department", *u.Department)
	}
	if u.Position != nil {
		add("position", *u.Position)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE app_users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repos) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM app_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
