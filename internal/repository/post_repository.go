package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tastemate/internal/models"
)

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

// Create inserts the post and fills in its ID. Author fields are stored as
// given; they are never joined back to users.
func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query := r.DB.Rebind(`
		INSERT INTO posts (title, content, category, author_login, author_name, image_url, views, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.DB.QueryRowxContext(ctx, query,
		post.Title,
		post.Content,
		post.Category,
		post.AuthorLogin,
		post.AuthorName,
		post.ImageURL,
		post.Views,
		post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	query := r.DB.Rebind(`SELECT * FROM posts WHERE id = ?`)

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) ListAll(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}

	err := r.DB.SelectContext(ctx, &posts, `SELECT * FROM posts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// ListByCategory returns newest first; ids are assigned monotonically.
func (r *PostRepositoryImpl) ListByCategory(ctx context.Context, category models.Category) ([]models.Post, error) {
	query := r.DB.Rebind(`SELECT * FROM posts WHERE category = ? ORDER BY id DESC`)

	posts := []models.Post{}
	err := r.DB.SelectContext(ctx, &posts, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for category %s: %w", category, err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) IncrementViews(ctx context.Context, postID int64) error {
	query := r.DB.Rebind(`UPDATE posts SET views = views + 1 WHERE id = ?`)

	result, err := r.DB.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	return expectOneRow(result, postID)
}

func (r *PostRepositoryImpl) SetImageURL(ctx context.Context, postID int64, imageURL string) error {
	query := r.DB.Rebind(`UPDATE posts SET image_url = ? WHERE id = ?`)

	result, err := r.DB.ExecContext(ctx, query, imageURL, postID)
	if err != nil {
		return fmt.Errorf("failed to set post image: %w", err)
	}

	return expectOneRow(result, postID)
}

func expectOneRow(result sql.Result, postID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}

	return nil
}
