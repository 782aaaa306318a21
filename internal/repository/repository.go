package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"tastemate/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type UpdateUserRequest struct {
	UserID   int64       `json:"userId"`
	Nickname string      `json:"nickname"`
	Role     models.Role `json:"role"`
}

type CreatePostRequest struct {
	Category models.Category `json:"category"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByCategory(ctx context.Context, category models.Category) ([]models.Post, error)
	IncrementViews(ctx context.Context, postID int64) error
	SetImageURL(ctx context.Context, postID int64, imageURL string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPostID(ctx context.Context, postID int64) ([]models.Comment, error)
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
}

type Repository struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Tables  TablesRepository
}

func NewRepository(db *sqlx.DB, passwordCost int) *Repository {
	return &Repository{
		User:    NewUserRepository(db, passwordCost),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Tables:  NewTablesRepository(db),
	}
}

// isUniqueViolation recognises unique-constraint failures from both supported drivers.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
