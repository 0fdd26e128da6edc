package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"slidegen-backend/internal/database"
	"slidegen-backend/internal/middleware"
	"slidegen-backend/internal/models"
)

const RefreshTokenTTL = 7 * 24 * time.Hour

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

// TokenStore keeps opaque refresh tokens. Lookup of an unknown token returns ErrTokenNotFound.
type TokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) (bool, error)
}

var ErrTokenNotFound = errors.New("refresh token not found")

type RedisTokenStore struct {
	redis *redis.Client
}

func NewRedisTokenStore(redisClient *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{redis: redisClient}
}

func (s *RedisTokenStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.redis.Set(ctx, database.RefreshTokenKey(token), userID.String(), ttl).Err()
}

func (s *RedisTokenStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	userIDStr, err := s.redis.Get(ctx, database.RefreshTokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(userIDStr)
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Del(ctx, database.RefreshTokenKey(token)).Result()
	return n > 0, err
}

type AuthService struct {
	users      UserStore
	tokens     TokenStore
	jwt        *middleware.JWTAuth
	bcryptCost int
}

func NewAuthService(users UserStore, tokens TokenStore, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		bcryptCost: 12,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SignUp creates an active account. Email addresses are compared case-insensitively.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	fieldErrors := make(map[string]string)
	if req.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if !emailRegex.MatchString(req.Email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if err := validatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthTokens, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid email or password"}
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, &UnauthorizedError{Message: "Account is deactivated"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	s.users.UpdateLastLogin(ctx, user.ID)

	return s.issueTokens(ctx, user)
}

// Refresh rotates refreshToken: the old one is revoked before a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please sign in again."}
	}

	if _, err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Account not found"}
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, &UnauthorizedError{Message: "Account is deactivated"}
	}

	return s.issueTokens(ctx, user)
}

// SignOut revokes refreshToken when it belongs to userID. A token owned by
// someone else is reported exactly like an unknown one.
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return &ValidationError{Fields: map[string]string{"refresh_token": "Refresh token is required"}}
	}
	invalid := &ValidationError{Fields: map[string]string{"refresh_token": "Invalid or expired refresh token"}}

	owner, err := s.tokens.Lookup(ctx, refreshToken)
	if errors.Is(err, ErrTokenNotFound) {
		return invalid
	}
	if err != nil {
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if owner != userID {
		return invalid
	}

	found, err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !found {
		return invalid
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(ctx, refreshToken, user.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
		User:         user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func validatePassword(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("Password must be at least 8 characters")
	}
	hasNumber := false
	for _, ch := range pw {
		if unicode.IsDigit(ch) {
			hasNumber = true
			break
		}
	}
	if !hasNumber {
		return fmt.Errorf("Password must contain at least one number")
	}
	return nil
}
