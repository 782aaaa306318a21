package service

import (
	"tastemate/internal/config"
	"tastemate/internal/repository"
	"tastemate/internal/storage"
)

type Service struct {
	User   UserService
	Post   PostService
	Auth   AuthService
	Chat   ChatService
	Tables TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage) *Service {
	return &Service{
		User:   NewUserService(rep.User),
		Post:   NewPostService(rep.Post, rep.Comment, storage),
		Auth:   NewAuthService(rep.User, cfg),
		Chat:   NewChatService(),
		Tables: NewTablesService(rep.Tables),
	}
}
