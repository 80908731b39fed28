// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviematch/moviematch/internal/database"
	"github.com/moviematch/moviematch/internal/logging"
)

// ErrInvalidCredentials is returned for a bad email/password combination.
// The same error covers unknown email and wrong password so login attempts
// cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the persistence store the auth service needs.
// *database.DB satisfies it.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*database.User, error)
}

// Service implements password login and token refresh.
type Service struct {
	users      UserStore
	jwt        *JWTManager
	autoCreate bool
}

func NewService(users UserStore, jwt *JWTManager, autoCreate bool) *Service {
	return &Service{users: users, jwt: jwt, autoCreate: autoCreate}
}

// Login verifies the password and issues a token pair. With auto-create
// enabled an unknown email registers a new account on first login.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		if !s.autoCreate {
			return nil, ErrInvalidCredentials
		}
		user, err = s.registerUser(ctx, email, password)
		if err != nil {
			return nil, err
		}
		return s.jwt.GeneratePair(user.ID, user.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.jwt.GeneratePair(user.ID, user.Email)
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.Validate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return s.jwt.GeneratePair(userID, claims.Email)
}

func (s *Service) registerUser(ctx context.Context, email, password string) (*database.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.CreateUser(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logging.Info().Str("email", user.Email).Int64("user_id", user.ID).Msg("Registered new user on first login")
	return user, nil
}
