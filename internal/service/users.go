package service

import (
	"context"
	"fmt"
	"regexp"

	"meterdesk/internal/auth"
	"meterdesk/internal/domain"
	"meterdesk/internal/repository"
)

// The distinguished bootstrap account; it cannot be deleted or
// deactivated.
const protectedUsername = "admin"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)

type UserService struct {
	users UserStore
}

// Authenticate verifies credentials against the identity store and
// returns the active user. Callers issue the session token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("invalid username format: %w", domain.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrForbidden)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account is disabled: %w", domain.ErrForbidden)
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrForbidden)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !canManageUsers(actor) {
		return nil, fmt.Errorf("only administrators manage users: %w", domain.ErrForbidden)
	}
	return s.users.ListUsers(ctx)
}

type NewUser struct {
	Username   string
	Password   string
	Role       domain.Role
	FullName   string
	Department string
	Position   string
}

func (s *UserService) Create(ctx context.Context, actor domain.Actor, in NewUser) (*domain.User, error) {
	if !canManageUsers(actor) {
		return nil, fmt.Errorf("only administrators manage users: %w", domain.ErrForbidden)
	}
	if !usernamePattern.MatchString(in.Username) {
		return nil, fmt.Errorf("username must be 3-20 alphanumeric characters: %w", domain.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", domain.ErrValidation)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrValidation)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.users.InsertUser(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		FullName:     in.FullName,
		Department:   in.Department,
		Position:     in.Position,
		IsActive:     true,
	})
}

type UserEdit struct {
	Password   *string
	Role       *domain.Role
	FullName   *string
	Department *string
	Position   *string
	IsActive   *bool
}

func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, in UserEdit) (*domain.User, error) {
	if !canManageUsers(actor) {
		return nil, fmt.Errorf("only administrators manage users: %w", domain.ErrForbidden)
	}
	existing, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Username == protectedUsername && in.IsActive != nil && !*in.IsActive {
		return nil, fmt.Errorf("the %s account cannot be deactivated: %w", protectedUsername, domain.ErrForbidden)
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", *in.Role, domain.ErrValidation)
	}

	u := repository.UserUpdate{
		Role:       in.Role,
		FullName:   in.FullName,
		Department: in.Department,
		Position:   in.Position,
		IsActive:   in.IsActive,
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, fmt.Errorf("password must be at least 6 characters: %w", domain.ErrValidation)
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}
	if err := s.users.UpdateUser(ctx, id, u); err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !canManageUsers(actor) {
		return fmt.Errorf("only administrators manage users: %w", domain.ErrForbidden)
	}
	existing, err := s.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if existing.Username == protectedUsername {
		return fmt.Errorf("the %s account cannot be deleted: %w", protectedUsername, domain.ErrForbidden)
	}
	return s.users.DeleteUser(ctx, id)
}
