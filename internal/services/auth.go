package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	apperrors "github.com/yungbote/koinetutor-backend/internal/pkg/errors"
	"github.com/yungbote/koinetutor-backend/internal/repos"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, error)
	Login(ctx context.Context, email, password string) (access string, refresh string, err error)
	Refresh(ctx context.Context, refreshToken string) (access string, refresh string, err error)
	ParseAccessToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  []byte(jwtSecretKey),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", apperrors.ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	created, err := as.userRepo.Create(ctx, nil, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", apperrors.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", "", apperrors.ErrUnauthorized
	}
	return as.issueTokens(ctx, user.ID)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	stored, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return "", "", err
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) {
		return "", "", apperrors.ErrUnauthorized
	}
	if err := as.userTokenRepo.DeleteByUserID(ctx, nil, stored.UserID); err != nil {
		return "", "", err
	}
	return as.issueTokens(ctx, stored.UserID)
}

func (as *authService) issueTokens(ctx context.Context, userID uuid.UUID) (string, string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}

	refresh := uuid.NewString()
	if _, err := as.userTokenRepo.Create(ctx, nil, &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(as.refreshTTL),
	}); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (as *authService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecretKey, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return userID, nil
}
