package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tastemate/internal/config"
	"tastemate/internal/database"
	"tastemate/internal/models"
	"tastemate/internal/repository"
	"tastemate/internal/storage"
)

type testEnv struct {
	db   *database.DB
	repo *repository.Repository
	svc  *Service
	cfg  *config.Config
}

func newTestEnv(t *testing.T, store storage.Storage) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DB: config.DB{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "test.db"),
		},
		SessionSecretKey: "test-secret-key",
		SessionDuration:  time.Hour,
		PasswordCost:     bcrypt.MinCost,
	}

	db, err := database.ConnectDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseDB() })

	repo := repository.NewRepository(db.DB, cfg.PasswordCost)
	return &testEnv{db: db, repo: repo, svc: NewService(repo, cfg, store), cfg: cfg}
}

func (e *testEnv) register(t *testing.T, username, password, nickname string) *models.User {
	t.Helper()
	user, err := e.svc.Auth.Register(context.Background(), repository.CreateUserRequest{
		Username: username,
		Password: password,
		Nickname: nickname,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) login(t *testing.T, username, password string) *models.SessionSnapshot {
	t.Helper()
	session, _, err := e.svc.Auth.Login(context.Background(), username, password)
	require.NoError(t, err)
	return session
}

func (e *testEnv) countPosts(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT COUNT(*) FROM posts`))
	return n
}

func TestRegister_DuplicateLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	first := env.register(t, "alice", "pw1", "Alice")
	assert.Equal(t, models.RoleUser, first.Role)
	assert.NotZero(t, first.ID)

	_, err := env.svc.Auth.Register(ctx, repository.CreateUserRequest{Username: "alice", Password: "pw2", Nickname: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateLogin)
}

func TestRegister_MultibytePasswordOver72Bytes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	password := strings.Repeat("가", 30)

	_, err := env.svc.Auth.Register(ctx, repository.CreateUserRequest{Username: "alice", Password: password, Nickname: "Alice"})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = env.repo.User.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = env.svc.User.EnsureAdmin(ctx, "root", password, "Root")
	assert.ErrorIs(t, err, repository.ErrPasswordTooLong)

	// 24 syllables are exactly 72 bytes
	user := env.register(t, "bob", strings.Repeat("가", 24), "Bob")
	assert.NotZero(t, user.ID)
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "plain-secret", "Alice")

	var stored string
	require.NoError(t, env.db.Get(&stored, `SELECT password_hash FROM users WHERE username = 'alice'`))
	assert.NotEqual(t, "plain-secret", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("plain-secret")))
}

func TestLogin_SnapshotMatchesStoredRow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "pw", "Alice")

	session, token, err := env.svc.Auth.Login(context.Background(), "alice", "pw")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", session.Login)
	assert.Equal(t, "Alice", session.Nickname)
	assert.Equal(t, models.RoleUser, session.Role)

	parsed, err := env.svc.Auth.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, session, parsed)
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "pw", "Alice")
	ctx := context.Background()

	_, _, wrongSecret := env.svc.Auth.Login(ctx, "alice", "nope")
	_, _, unknownUser := env.svc.Auth.Login(ctx, "mallory", "pw")

	assert.ErrorIs(t, wrongSecret, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongSecret.Error(), unknownUser.Error())
}

func TestCreatePost_DenormalizesAuthorAndFiltersByCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "alice", "pw", "Alice")
	session := env.login(t, "alice", "pw")

	created, err := env.svc.Post.CreatePost(ctx, session, repository.CreatePostRequest{
		Category: models.CategorySolo,
		Title:    "Highball and karaage",
		Content:  "Crunchy and fizzy.",
	})
	require.NoError(t, err)

	solo, err := env.svc.Post.ListByCategory(ctx, models.CategorySolo)
	require.NoError(t, err)
	require.Len(t, solo, 1)
	assert.Equal(t, created.ID, solo[0].ID)
	assert.Equal(t, "alice", solo[0].AuthorLogin)
	assert.Equal(t, "Alice", solo[0].AuthorName)

	date, err := env.svc.Post.ListByCategory(ctx, models.CategoryDate)
	require.NoError(t, err)
	assert.Empty(t, date)
}

func TestCreatePost_AuthorFieldsSurviveNicknameChange(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.register(t, "alice", "pw", "Alice")
	env.register(t, "root", "pw", "Root")
	require.NoError(t, env.svc.User.EnsureAdmin(ctx, "root", "pw", "Root"))
	admin := env.login(t, "root", "pw")

	_, err := env.svc.Post.CreatePost(ctx, env.login(t, "alice", "pw"), repository.CreatePostRequest{
		Category: models.CategoryEtc, Title: "t", Content: "c",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.User.UpdateUser(ctx, admin, repository.UpdateUserRequest{
		UserID: alice.ID, Nickname: "Alicia", Role: models.RoleUser,
	}))

	posts, err := env.svc.Post.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Alice", posts[0].AuthorName)
}

func TestListByCategory_NewestFirst(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "alice", "pw", "Alice")
	session := env.login(t, "alice", "pw")

	var ids []int64
	for _, title := range []string{"P1", "P2", "P3"} {
		post, err := env.svc.Post.CreatePost(ctx, session, repository.CreatePostRequest{
			Category: models.CategoryWork, Title: title, Content: "body",
		})
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}

	posts, err := env.svc.Post.ListByCategory(ctx, models.CategoryWork)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"P3", "P2", "P1"}, []string{posts[0].Title, posts[1].Title, posts[2].Title})
	assert.Equal(t, ids[2], posts[0].ID)
}

func TestListByCategory_RejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.Post.ListByCategory(context.Background(), models.Category("PARTY"))

	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestCreatePost_AnonymousRejectedWithoutRow(t *testing.T) {
	env := newTestEnv(t, nil)

	post, err := env.svc.Post.CreatePost(context.Background(), nil, repository.CreatePostRequest{
		Category: models.CategorySolo, Title: "t", Content: "c",
	})

	assert.Nil(t, post)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, env.countPosts(t))
}

func TestCreatePost_InvalidCategoryRejectedWithoutRow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "pw", "Alice")

	_, err := env.svc.Post.CreatePost(context.Background(), env.login(t, "alice", "pw"), repository.CreatePostRequest{
		Category: models.Category("PARTY"), Title: "t", Content: "c",
	})

	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Equal(t, 0, env.countPosts(t))
}

func TestUpdateUser_NonAdminForbiddenWithoutMutation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.register(t, "alice", "pw", "Alice")
	env.register(t, "bob", "pw", "Bob")
	bob := env.login(t, "bob", "pw")

	err := env.svc.User.UpdateUser(ctx, bob, repository.UpdateUserRequest{
		UserID: alice.ID, Nickname: "Hacked", Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.svc.User.UpdateUser(ctx, nil, repository.UpdateUserRequest{
		UserID: alice.ID, Nickname: "Hacked", Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	stored, err := env.repo.User.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Nickname)
	assert.Equal(t, models.RoleUser, stored.Role)
}

func TestUpdateUser_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.register(t, "alice", "pw", "Alice")
	require.NoError(t, env.svc.User.EnsureAdmin(ctx, "root", "pw", "Root"))
	admin := env.login(t, "root", "pw")

	err := env.svc.User.UpdateUser(ctx, admin, repository.UpdateUserRequest{UserID: alice.ID, Nickname: "A", Role: "ROOT"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	err = env.svc.User.UpdateUser(ctx, admin, repository.UpdateUserRequest{UserID: 999, Nickname: "A", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPromotion_FreshLoginSeesAdminOldSnapshotStaysUser(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.register(t, "alice", "pw", "Alice")
	require.NoError(t, env.svc.User.EnsureAdmin(ctx, "root", "pw", "Root"))
	admin := env.login(t, "root", "pw")

	_, oldToken, err := env.svc.Auth.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, env.svc.User.UpdateUser(ctx, admin, repository.UpdateUserRequest{
		UserID: alice.ID, Nickname: "Alice", Role: models.RoleAdmin,
	}))

	fresh := env.login(t, "alice", "pw")
	assert.Equal(t, models.RoleAdmin, fresh.Role)

	stale, err := env.svc.Auth.ParseSession(oldToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stale.Role)
	assert.ErrorIs(t, RequireRole(stale, models.RoleAdmin), ErrForbidden)
}

func TestListUsers_AdminOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "alice", "pw", "Alice")
	require.NoError(t, env.svc.User.EnsureAdmin(ctx, "root", "pw", "Root"))

	_, err := env.svc.User.ListUsers(ctx, env.login(t, "alice", "pw"))
	assert.ErrorIs(t, err, ErrForbidden)

	users, err := env.svc.User.ListUsers(ctx, env.login(t, "root", "pw"))
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestEnsureAdmin_PromotesExistingUser(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "boss", "pw", "Boss")

	require.NoError(t, env.svc.User.EnsureAdmin(ctx, "boss", "ignored", "Boss"))
	require.NoError(t, env.svc.User.EnsureAdmin(ctx, "boss", "ignored", "Boss"))

	session := env.login(t, "boss", "pw")
	assert.Equal(t, models.RoleAdmin, session.Role)
}

func TestGetPost_CountsViewsAndLoadsComments(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "alice", "pw", "Alice")
	session := env.login(t, "alice", "pw")

	post, err := env.svc.Post.CreatePost(ctx, session, repository.CreatePostRequest{
		Category: models.CategoryDate, Title: "Wine and cheese", Content: "Classic.",
	})
	require.NoError(t, err)

	_, err = env.svc.Post.AddComment(ctx, session, post.ID, "Brie please")
	require.NoError(t, err)

	_, err = env.svc.Post.GetPost(ctx, post.ID)
	require.NoError(t, err)
	got, err := env.svc.Post.GetPost(ctx, post.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), got.Views)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Alice", got.Comments[0].AuthorName)

	_, err = env.svc.Post.GetPost(ctx, 404)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddComment_Guards(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "pw", "Alice")
	ctx := context.Background()

	_, err := env.svc.Post.AddComment(ctx, nil, 1, "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.svc.Post.AddComment(ctx, env.login(t, "alice", "pw"), 1, "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestParseSession_RejectsTamperedAndExpired(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "pw", "Alice")

	_, token, err := env.svc.Auth.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	_, err = env.svc.Auth.ParseSession(token + "x")
	assert.Error(t, err)

	other := NewAuthService(env.repo.User, &config.Config{SessionSecretKey: "other", SessionDuration: time.Hour})
	_, err = other.ParseSession(token)
	assert.Error(t, err)

	expired := &authService{userRepo: env.repo.User, cfg: &config.Config{SessionSecretKey: "test-secret-key", SessionDuration: -time.Minute}}
	_, expiredToken, err := expired.issueSession(&models.User{Username: "alice", Nickname: "Alice", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = env.svc.Auth.ParseSession(expiredToken)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	assert.ErrorIs(t, RequireRole(nil, models.RoleAdmin), ErrUnauthenticated)
	assert.ErrorIs(t, RequireRole(&models.SessionSnapshot{Role: models.RoleUser}, models.RoleAdmin), ErrForbidden)
	assert.NoError(t, RequireRole(&models.SessionSnapshot{Role: models.RoleAdmin}, models.RoleAdmin))

	ctx := WithSession(context.Background(), &models.SessionSnapshot{Login: "alice"})
	assert.Equal(t, "alice", SessionFromContext(ctx).Login)
	assert.Nil(t, SessionFromContext(context.Background()))
}

func TestChatService_Ask(t *testing.T) {
	chat := NewChatService()

	reply, err := chat.Ask(context.Background(), "makgeolli")
	require.NoError(t, err)
	assert.Contains(t, reply, "'makgeolli'")

	_, err = chat.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestTablesService_CountTables(t *testing.T) {
	env := newTestEnv(t, nil)

	count, err := env.svc.Tables.CountTables(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

type fakeStorage struct {
	uploaded []byte
	deleted  []string
}

func (f *fakeStorage) UploadImage(ctx context.Context, postID int64, fileName string, file io.Reader, size int64, contentType string) (string, string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", err
	}
	f.uploaded = data
	return "posts/1/a.png", "http://minio.local/post-images/posts/1/a.png", nil
}

func (f *fakeStorage) DeleteImage(ctx context.Context, objectName string) error {
	f.deleted = append(f.deleted, objectName)
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestAttachImage(t *testing.T) {
	store := &fakeStorage{}
	env := newTestEnv(t, store)
	ctx := context.Background()
	env.register(t, "alice", "pw", "Alice")
	env.register(t, "bob", "pw", "Bob")
	alice := env.login(t, "alice", "pw")

	post, err := env.svc.Post.CreatePost(ctx, alice, repository.CreatePostRequest{
		Category: models.CategorySolo, Title: "t", Content: "c",
	})
	require.NoError(t, err)

	_, err = env.svc.Post.AttachImage(ctx, env.login(t, "bob", "pw"), post.ID, "a.png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Post.AttachImage(ctx, alice, post.ID, "a.txt", bytes.NewReader([]byte("plain text")), 10)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	updated, err := env.svc.Post.AttachImage(ctx, alice, post.ID, "a.png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "http://minio.local/post-images/posts/1/a.png", updated.ImageURL)
	assert.Equal(t, pngHeader, store.uploaded)

	stored, err := env.repo.Post.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, stored.ImageURL)
}

func TestAttachImage_DisabledWithoutStorage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice", "pw", "Alice")

	assert.False(t, env.svc.Post.UploadsEnabled())
	_, err := env.svc.Post.AttachImage(context.Background(), env.login(t, "alice", "pw"), 1, "a.png", bytes.NewReader(pngHeader), 1)
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
