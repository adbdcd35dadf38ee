package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/yungbote/koinetutor-backend/internal/pkg/errors"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type fakeUserRepo struct {
	byEmail map[string]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return nil, apperrors.ErrConflict
	}
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	return f.byEmail[email], nil
}

type fakeUserTokenRepo struct {
	byRefresh map[string]*types.UserToken
}

func newFakeUserTokenRepo() *fakeUserTokenRepo {
	return &fakeUserTokenRepo{byRefresh: map[string]*types.UserToken{}}
}

func (f *fakeUserTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) (*types.UserToken, error) {
	f.byRefresh[token.RefreshToken] = token
	return token, nil
}

func (f *fakeUserTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.UserToken, error) {
	return f.byRefresh[refreshToken], nil
}

func (f *fakeUserTokenRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	for key, token := range f.byRefresh {
		if token.UserID == userID {
			delete(f.byRefresh, key)
		}
	}
	return nil
}

func newTestAuthService(users *fakeUserRepo, tokens *fakeUserTokenRepo) AuthService {
	return NewAuthService(testLogger(), users, tokens, "test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeUserTokenRepo())
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "longenough"},
		{"no at sign", "not-an-email", "longenough"},
		{"short password", "a@b.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.email, tc.password, "A", "B"); !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestRegisterNormalizesEmailAndHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeUserTokenRepo())

	user, err := svc.Register(context.Background(), "  Maria@Example.COM ", "correct horse", "Maria", "K")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "maria@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Password == "correct horse" {
		t.Fatal("password stored in plaintext")
	}
	if users.byEmail["maria@example.com"] == nil {
		t.Fatal("user not persisted under normalized email")
	}
}

func TestLoginRoundTripAndParse(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeUserTokenRepo()
	svc := newTestAuthService(users, tokens)
	ctx := context.Background()

	user, err := svc.Register(ctx, "student@example.com", "koine-greek", "S", "T")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	access, refresh, err := svc.Login(ctx, "student@example.com", "koine-greek")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected both tokens")
	}

	parsed, err := svc.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if parsed != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, parsed)
	}
}

func TestLoginRejectsWrongPasswordAndUnknownUser(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeUserTokenRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "student@example.com", "koine-greek", "S", "T"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "student@example.com", "wrong"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeUserTokenRepo()
	svc := newTestAuthService(users, tokens)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "student@example.com", "koine-greek", "S", "T"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, refresh, err := svc.Login(ctx, "student@example.com", "koine-greek")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access2, refresh2, err := svc.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access2 == "" || refresh2 == "" || refresh2 == refresh {
		t.Fatal("expected a fresh token pair")
	}

	// The old refresh token is gone after rotation.
	if _, _, err := svc.Refresh(ctx, refresh); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rotated token, got %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeUserTokenRepo()
	svc := newTestAuthService(users, tokens)
	ctx := context.Background()

	expired := &types.UserToken{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		RefreshToken: "stale",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	if _, err := tokens.Create(ctx, nil, expired); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, "stale"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeUserTokenRepo())
	if _, err := svc.ParseAccessToken("not-a-jwt"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
