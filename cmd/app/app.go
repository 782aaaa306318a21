package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"tastemate/internal/config"
	"tastemate/internal/database"
	handlers "tastemate/internal/handler"
	"tastemate/internal/middleware"
	"tastemate/internal/models"
	"tastemate/internal/repository"
	"tastemate/internal/service"
	"tastemate/internal/storage"
)

// App opens the database, optional image storage and builds the services.
// The caller owns the returned DB.
func App(ctx context.Context, cfg *config.Config) (*database.DB, *service.Service, error) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// connection MinIO, skipped when no endpoint is configured
	var store storage.Storage
	if cfg.MinIO.Enabled() {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			db.CloseDB()
			return nil, nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		store = minioClient
	} else {
		log.Println("MINIO_ENDPOINT is empty, image uploads are disabled")
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB, cfg.PasswordCost)
	services := service.NewService(repo, cfg, store)

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		if err := services.User.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Nickname); err != nil {
			db.CloseDB()
			return nil, nil, err
		}
	}

	return db, services, nil
}

// Router registers every route and wraps it in the middleware chain.
func Router(h *handlers.Handlers, services *service.Service, cfg *config.Config) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/register", h.RegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)

	r.HandleFunc("/chatbot", h.ChatbotPage).Methods(http.MethodGet)
	r.HandleFunc("/api/ask", h.Ask).Methods(http.MethodPost)

	r.HandleFunc("/community", h.Community).Methods(http.MethodGet)
	r.HandleFunc("/community/list/{category}", h.CategoryList).Methods(http.MethodGet)
	r.HandleFunc("/community/write", h.WritePage).Methods(http.MethodGet)
	r.HandleFunc("/community/write", h.WritePost).Methods(http.MethodPost)
	r.HandleFunc("/community/post/{id:[0-9]+}", h.PostDetail).Methods(http.MethodGet)
	r.HandleFunc("/community/post/{id:[0-9]+}/comment", h.AddComment).Methods(http.MethodPost)

	adminOnly := middleware.RoleMiddleware(models.RoleAdmin, h.HandleError)
	r.Handle("/admin", adminOnly(http.HandlerFunc(h.AdminPage))).Methods(http.MethodGet)
	r.Handle("/admin/update", adminOnly(http.HandlerFunc(h.UpdateUser))).Methods(http.MethodPost)

	return middleware.Chain(
		r,
		middleware.LoggingMiddleware,
		middleware.RecoverMiddleware,
		middleware.SessionMiddleware(services.Auth, cfg.SessionCookieName),
	)
}
