package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tastemate/internal/models"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO comments (post_id, author_name, content, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		comment.PostID, comment.AuthorName, comment.Content, comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *commentRepository) ListByPostID(ctx context.Context, postID int64) ([]models.Comment, error) {
	query := r.db.Rebind(`SELECT * FROM comments WHERE post_id = ? ORDER BY id`)

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
