// internal/auth/service.go
// Service layer contains all business logic for authentication.
// Refresh tokens are tracked in Redis by JTI so they can be rotated and revoked.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emberlyhq/emberly-backend/internal/common/utils"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Service interface
type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Config carries the knobs the service needs from the app config
type Config struct {
	JWTSecret          string
	BCryptCost         int
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type service struct {
	repo  Repository
	redis *redis.Client // optional; refresh rotation degrades gracefully without it
	cfg   Config
}

func NewService(repo Repository, redisClient *redis.Client, cfg Config) Service {
	return &service{
		repo:  repo,
		redis: redisClient,
		cfg:   cfg,
	}
}

func (s *service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}

	// Rotation: the presented JTI must still be registered, and is consumed
	// by this call so the same refresh token cannot be replayed.
	if s.redis != nil {
		key := refreshKey(claims.UserID, claims.JTI)
		deleted, err := s.redis.Del(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check refresh token: %w", err)
		}
		if deleted == 0 {
			return nil, ErrTokenRevoked
		}
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := utils.ValidateJWT(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return ErrInvalidToken
	}

	if s.redis != nil {
		return s.redis.Del(ctx, refreshKey(claims.UserID, claims.JTI)).Err()
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *User) (*AuthResponse, error) {
	now := time.Now()

	accessClaims := &utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Type:      "access",
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(s.cfg.AccessTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "emberly",
		Subject:   fmt.Sprintf("%d", user.ID),
	}

	accessToken, err := utils.GenerateJWT(accessClaims, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshJTI := uuid.NewString()
	refreshClaims := &utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Type:      "refresh",
		JTI:       refreshJTI,
		ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "emberly",
		Subject:   fmt.Sprintf("%d", user.ID),
	}

	refreshToken, err := utils.GenerateJWT(refreshClaims, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		key := refreshKey(user.ID, refreshJTI)
		if err := s.redis.Set(ctx, key, "1", s.cfg.RefreshTokenExpiry).Err(); err != nil {
			return nil, fmt.Errorf("failed to register refresh token: %w", err)
		}
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry.Seconds()),
	}, nil
}

func refreshKey(userID int64, jti string) string {
	return fmt.Sprintf("auth:refresh:%d:%s", userID, jti)
}
