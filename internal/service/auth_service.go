package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tastemate/internal/config"
	"tastemate/internal/models"
	"tastemate/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.SessionSnapshot, string, error)
	ParseSession(tokenString string) (*models.SessionSnapshot, error)
}

type sessionClaims struct {
	Login    string      `json:"login"`
	Nickname string      `json:"nickname"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Role:     models.RoleUser,
	}

	err := s.userRepo.CreateUser(ctx, user, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateLogin
		}
		if errors.Is(err, repository.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

// Login does not tell an unknown login apart from a wrong password.
func (s *authService) Login(ctx context.Context, username, password string) (*models.SessionSnapshot, string, error) {
	user, err := s.userRepo.VerifyPassword(ctx, username, password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrPasswordMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("authentication failed: %w", err)
	}

	session, token, err := s.issueSession(user)
	if err != nil {
		return nil, "", err
	}

	return session, token, nil
}

func (s *authService) issueSession(user *models.User) (*models.SessionSnapshot, string, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.SessionDuration)

	claims := sessionClaims{
		Login:    user.Username,
		Nickname: user.Nickname,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.SessionSecretKey))
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session: %w", err)
	}

	session := &models.SessionSnapshot{
		Login:     user.Username,
		Nickname:  user.Nickname,
		Role:      user.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	return session, tokenString, nil
}

func (s *authService) ParseSession(tokenString string) (*models.SessionSnapshot, error) {
	claims := &sessionClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	if claims.Login == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid session claims")
	}

	return &models.SessionSnapshot{
		Login:     claims.Login,
		Nickname:  claims.Nickname,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
