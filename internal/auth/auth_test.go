// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/database"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.AuthConfig{
		JWTSecret:       testSecret,
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestJWTManagerRejectsShortSecret(t *testing.T) {
	_, err := NewJWTManager(&config.AuthConfig{JWTSecret: "short"})
	if err == nil {
		t.Error("NewJWTManager() accepted a short secret")
	}
}

func TestGeneratePairRoundTrip(t *testing.T) {
	m := testManager(t)

	pair, err := m.GeneratePair(42, "demo@example.com")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}
	if pair.TokenType != "bearer" || pair.ExpiresIn != 60 {
		t.Errorf("pair = %+v, want bearer/60s", pair)
	}

	claims, err := m.Validate(pair.AccessToken, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate(access) error = %v", err)
	}
	if id, _ := claims.UserID(); id != 42 {
		t.Errorf("UserID() = %d, want 42", id)
	}
	if claims.Email != "demo@example.com" {
		t.Errorf("email = %q", claims.Email)
	}

	if _, err := m.Validate(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Errorf("Validate(refresh) error = %v", err)
	}
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	m := testManager(t)
	pair, err := m.GeneratePair(1, "a@b.c")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}

	if _, err := m.Validate(pair.RefreshToken, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(refresh as access) error = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Validate(pair.AccessToken, TokenTypeRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(access as refresh) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	m := testManager(t)
	pair, err := m.GeneratePair(1, "a@b.c")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := m.Validate(tampered, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(tampered) error = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Validate("not-a-token", TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(garbage) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m, err := NewJWTManager(&config.AuthConfig{
		JWTSecret:       testSecret,
		AccessTokenTTL:  -time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	pair, err := m.GeneratePair(1, "a@b.c")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}
	if _, err := m.Validate(pair.AccessToken, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(expired) error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter2-but-longer" {
		t.Fatal("HashPassword() returned the plaintext")
	}
	if !CheckPassword(hash, "hunter2-but-longer") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users  map[string]*database.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*database.User), nextID: 1}
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, email, passwordHash string) (*database.User, error) {
	u := &database.User{ID: f.nextID, Email: strings.ToLower(email), PasswordHash: passwordHash}
	f.nextID++
	f.users[u.Email] = u
	return u, nil
}

func TestServiceLoginAutoCreatesUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, testManager(t), true)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "new@example.com", "first-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("Login() returned empty access token")
	}
	if len(store.users) != 1 {
		t.Fatalf("store holds %d users, want 1", len(store.users))
	}

	// Second login must verify against the stored hash.
	if _, err := svc.Login(ctx, "new@example.com", "first-password"); err != nil {
		t.Errorf("repeat Login() error = %v", err)
	}
	if _, err := svc.Login(ctx, "new@example.com", "different"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestServiceLoginWithoutAutoCreateRejectsUnknown(t *testing.T) {
	svc := NewService(newFakeUserStore(), testManager(t), false)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestServiceRefresh(t *testing.T) {
	m := testManager(t)
	svc := NewService(newFakeUserStore(), m, true)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "demo@example.com", "password-123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	claims, err := m.Validate(fresh.AccessToken, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate(refreshed access) error = %v", err)
	}
	if claims.Email != "demo@example.com" {
		t.Errorf("refreshed email = %q", claims.Email)
	}

	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh(access token) error = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticatorMiddleware(t *testing.T) {
	m := testManager(t)
	rejected := 0
	authn := NewAuthenticator(m, func(w http.ResponseWriter, r *http.Request, reason string) {
		rejected++
		w.WriteHeader(http.StatusUnauthorized)
	})

	var got Principal
	handler := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	pair, err := m.GeneratePair(7, "u@example.com")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}

	// Valid access token passes and resolves the principal.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != 7 || got.Email != "u@example.com" {
		t.Errorf("principal = %+v, want user 7", got)
	}

	// Missing header, malformed header and refresh token are all rejected.
	for _, header := range []string{"", "Token abc", "Bearer " + pair.RefreshToken} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
	if rejected != 3 {
		t.Errorf("reject callback ran %d times, want 3", rejected)
	}
}
