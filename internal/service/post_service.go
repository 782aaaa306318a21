package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gabriel-vasile/mimetype"

	"tastemate/internal/models"
	"tastemate/internal/repository"
	"tastemate/internal/storage"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type PostService interface {
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByCategory(ctx context.Context, category models.Category) ([]models.Post, error)
	CreatePost(ctx context.Context, session *models.SessionSnapshot, req repository.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
	AddComment(ctx context.Context, session *models.SessionSnapshot, postID int64, content string) (*models.Comment, error)
	AttachImage(ctx context.Context, session *models.SessionSnapshot, postID int64, fileName string, file io.ReadSeeker, size int64) (*models.Post, error)
	UploadsEnabled() bool
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	storage     storage.Storage
}

// NewPostService accepts a nil storage; uploads are then rejected with ErrUploadsDisabled.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, storage storage.Storage) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		storage:     storage,
	}
}

func (p *postService) ListAll(ctx context.Context) ([]models.Post, error) {
	return p.postRepo.ListAll(ctx)
}

func (p *postService) ListByCategory(ctx context.Context, category models.Category) ([]models.Post, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	return p.postRepo.ListByCategory(ctx, category)
}

// CreatePost copies the author's login and nickname from the session, so
// later nickname changes leave old posts as they were.
func (p *postService) CreatePost(ctx context.Context, session *models.SessionSnapshot, req repository.CreatePostRequest) (*models.Post, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	if !req.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	post := &models.Post{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		AuthorLogin: session.Login,
		AuthorName:  session.Nickname,
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (p *postService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	if err := p.postRepo.IncrementViews(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	post.Comments, err = p.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (p *postService) AddComment(ctx context.Context, session *models.SessionSnapshot, postID int64, content string) (*models.Comment, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	if _, err := p.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:     postID,
		AuthorName: session.Nickname,
		Content:    content,
	}

	if err := p.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (p *postService) UploadsEnabled() bool {
	return p.storage != nil
}

// AttachImage stores an image for a post owned by the session user. The
// type is sniffed from the content, not taken from the client.
func (p *postService) AttachImage(ctx context.Context, session *models.SessionSnapshot, postID int64, fileName string, file io.ReadSeeker, size int64) (*models.Post, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	if p.storage == nil {
		return nil, ErrUploadsDisabled
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.AuthorLogin != session.Login {
		return nil, ErrForbidden
	}

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect image type: %w", err)
	}
	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		return nil, ErrUnsupportedImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	objectName, imageURL, err := p.storage.UploadImage(ctx, postID, fileName, file, size, mime.String())
	if err != nil {
		return nil, err
	}

	if err := p.postRepo.SetImageURL(ctx, postID, imageURL); err != nil {
		if delErr := p.storage.DeleteImage(ctx, objectName); delErr != nil {
			log.Printf("Warning: orphaned image %s: %v", objectName, delErr)
		}
		return nil, err
	}

	post.ImageURL = imageURL
	return post, nil
}
