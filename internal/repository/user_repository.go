package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"tastemate/internal/models"
)

type userRepository struct {
	db   *sqlx.DB
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserRepository(db *sqlx.DB, cost int) UserRepository {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &userRepository{db: db, cost: cost}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("user %s: %w", user.Username, ErrPasswordTooLong)
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO users (username, password_hash, nickname, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err = r.db.QueryRowxContext(ctx, query,
		user.Username, user.PasswordHash, user.Nickname, user.Role, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	query := r.db.Rebind(`SELECT * FROM users WHERE id = ?`)

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := r.db.Rebind(`SELECT * FROM users WHERE username = ?`)

	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}

	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// VerifyPassword runs a bcrypt comparison even for unknown usernames so the
// response time does not reveal which usernames exist.
func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(r.dummy(), []byte(password))
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrPasswordMismatch
	}

	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET nickname = :nickname, role = :role
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}

	return nil
}

func (r *userRepository) dummy() []byte {
	r.dummyOnce.Do(func() {
		r.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), r.cost)
	})
	return r.dummyHash
}
