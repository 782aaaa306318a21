package test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"tastemate/internal/models"
	"tastemate/internal/repository"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req repository.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*models.SessionSnapshot, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.SessionSnapshot), args.String(1), args.Error(2)
}

func (m *MockAuthService) ParseSession(token string) (*models.SessionSnapshot, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionSnapshot), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, session *models.SessionSnapshot) ([]models.User, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, session *models.SessionSnapshot, req repository.UpdateUserRequest) error {
	args := m.Called(ctx, session, req)
	return args.Error(0)
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, username, password, nickname string) error {
	args := m.Called(ctx, username, password, nickname)
	return args.Error(0)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) ListAll(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) ListByCategory(ctx context.Context, category models.Category) ([]models.Post, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) CreatePost(ctx context.Context, session *models.SessionSnapshot, req repository.CreatePostRequest) (*models.Post, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) AddComment(ctx context.Context, session *models.SessionSnapshot, postID int64, content string) (*models.Comment, error) {
	args := m.Called(ctx, session, postID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockPostService) AttachImage(ctx context.Context, session *models.SessionSnapshot, postID int64, fileName string, file io.ReadSeeker, size int64) (*models.Post, error) {
	args := m.Called(ctx, session, postID, fileName, file, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) UploadsEnabled() bool {
	return m.Called().Bool(0)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Ask(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type MockTablesService struct {
	mock.Mock
}

func (m *MockTablesService) CountTables(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
