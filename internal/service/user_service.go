package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tastemate/internal/models"
	"tastemate/internal/repository"
)

type UserService interface {
	ListUsers(ctx context.Context, session *models.SessionSnapshot) ([]models.User, error)
	UpdateUser(ctx context.Context, session *models.SessionSnapshot, req repository.UpdateUserRequest) error
	EnsureAdmin(ctx context.Context, username, password, nickname string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) ListUsers(ctx context.Context, session *models.SessionSnapshot) ([]models.User, error) {
	if err := RequireRole(session, models.RoleAdmin); err != nil {
		return nil, err
	}

	return s.userRepo.ListUsers(ctx)
}

// UpdateUser changes nickname and role. Sessions already issued to the
// target user keep their old snapshot until they log in again.
func (s *userService) UpdateUser(ctx context.Context, session *models.SessionSnapshot, req repository.UpdateUserRequest) error {
	if err := RequireRole(session, models.RoleAdmin); err != nil {
		return err
	}

	if !req.Role.Valid() {
		return ErrInvalidRole
	}

	user, err := s.userRepo.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.Nickname = req.Nickname
	user.Role = req.Role

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Printf("user %s updated by %s: nickname=%q role=%s", user.Username, session.Login, user.Nickname, user.Role)
	return nil
}

// EnsureAdmin creates the bootstrap admin, or promotes the account if the login already exists.
func (s *userService) EnsureAdmin(ctx context.Context, username, password, nickname string) error {
	user := &models.User{
		Username: username,
		Nickname: nickname,
		Role:     models.RoleAdmin,
	}

	err := s.userRepo.CreateUser(ctx, user, password)
	if err == nil {
		log.Printf("bootstrap admin %s created", username)
		return nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load bootstrap admin: %w", err)
	}
	if existing.Role == models.RoleAdmin {
		return nil
	}

	existing.Role = models.RoleAdmin
	if err := s.userRepo.UpdateUser(ctx, existing); err != nil {
		return fmt.Errorf("failed to promote bootstrap admin: %w", err)
	}

	log.Printf("existing user %s promoted to admin", username)
	return nil
}
