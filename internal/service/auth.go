package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
	"github.com/forkful/forkful-backend/internal/types"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration, login and token issuance. The core
// services trust the user ID it puts into request context and perform no
// credential checks themselves.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user with a bcrypt credential hash and returns a
// session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case name == "":
		return nil, "", fmt.Errorf("name is required: %w", ErrInvalidArgument)
	case len(name) > maxNameLen:
		return nil, "", fmt.Errorf("name exceeds %d characters: %w", maxNameLen, ErrInvalidArgument)
	case email == "" || !strings.Contains(email, "@"):
		return nil, "", fmt.Errorf("a valid email is required: %w", ErrInvalidArgument)
	case len(password) < 6:
		return nil, "", fmt.Errorf("password must be at least 6 characters: %w", ErrInvalidArgument)
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, "", fmt.Errorf("email %s already registered: %w", email, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login verifies credentials, stamps the login time and returns a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	stamped, err := s.stampLogin(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(stamped)
	if err != nil {
		return nil, "", err
	}
	return stamped, token, nil
}

// OAuthLogin upserts a user from an external identity. First login creates
// the account; later logins refresh name, avatar and the login timestamp.
func (s *AuthService) OAuthLogin(ctx context.Context, googleID, email, name, avatar string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if googleID == "" || email == "" {
		return nil, "", fmt.Errorf("external identity and email are required: %w", ErrInvalidArgument)
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:       name,
			Email:      email,
			GoogleID:   googleID,
			Avatar:     avatar,
			IsVerified: true,
			IsActive:   true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, "", err
		}
	case err != nil:
		return nil, "", err
	default:
		if !user.IsActive {
			return nil, "", fmt.Errorf("account is deactivated: %w", ErrForbidden)
		}
		if _, err := mutateUser(ctx, s.db, user.ID, func(u *models.User) error {
			u.GoogleID = googleID
			u.IsVerified = true
			if name != "" {
				u.Name = name
			}
			if avatar != "" {
				u.Avatar = avatar
			}
			return nil
		}); err != nil {
			return nil, "", err
		}
	}

	stamped, err := s.stampLogin(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(stamped)
	if err != nil {
		return nil, "", err
	}
	return stamped, token, nil
}

// GetUserByID fetches a user aggregate.
func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GenerateToken issues a signed session token carrying the user's identity
// and admin capability.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   user.ID,
		Username: user.Name,
		IsAdmin:  user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*types.TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) stampLogin(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return mutateUser(ctx, s.db, userID, func(u *models.User) error {
		now := time.Now().UTC()
		u.LastLoginAt = &now
		return nil
	})
}
