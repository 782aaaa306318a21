package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tastemate/internal/config"
)

// Storage keeps post images outside the database; only the URL is stored on the post.
type Storage interface {
	UploadImage(ctx context.Context, postID int64, fileName string, file io.Reader, size int64, contentType string) (string, string, error)
	DeleteImage(ctx context.Context, objectName string) error
}

type MinIOClient struct {
	client *minio.Client
	config config.MinIO
}

func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.BucketName, err)
		}
	}

	return &MinIOClient{client: client, config: cfg}, nil
}

// ObjectName lays images out as posts/<id>/<yyyy>/<mm>/<uuid>[-<slug>]<ext>.
// The slug keeps a readable, ASCII-only hint of the uploaded file name.
func ObjectName(postID int64, fileName string, now time.Time) string {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	name := uuid.New().String()
	if hint := fileSlug(fileName); hint != "" {
		name += "-" + hint
	}

	return fmt.Sprintf("posts/%d/%d/%02d/%s%s",
		postID,
		now.Year(),
		now.Month(),
		name,
		fileExt)
}

func fileSlug(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	s := slug.Make(base)
	if len(s) > 40 {
		s = strings.Trim(s[:40], "-")
	}
	return s
}

// ObjectURL is the public path of an object in the configured bucket.
func ObjectURL(cfg config.MinIO, objectName string) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.BucketName, objectName)
}

func (m *MinIOClient) UploadImage(ctx context.Context, postID int64, fileName string, file io.Reader, size int64, contentType string) (string, string, error) {
	now := time.Now()
	objectName := ObjectName(postID, fileName, now)

	_, err := m.client.PutObject(ctx, m.config.BucketName, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileSlug(fileName),
				"post-id":           fmt.Sprint(postID),
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return objectName, ObjectURL(m.config, objectName), nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.config.BucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}
