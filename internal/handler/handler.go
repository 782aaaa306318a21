package handlers

import (
	"html/template"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tastemate/internal/config"
	"tastemate/internal/service"
	"tastemate/web"
)

type Handlers struct {
	AuthService   service.AuthService
	UserService   service.UserService
	PostService   service.PostService
	ChatService   service.ChatService
	TablesService service.TablesService
	Cfg           *config.Config
	Validate      *validator.Validate
	Templates     *template.Template
}

func NewHandlers(service *service.Service, config *config.Config) (*Handlers, error) {
	tmpl, err := web.ParseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		AuthService:   service.Auth,
		UserService:   service.User,
		PostService:   service.Post,
		ChatService:   service.Chat,
		TablesService: service.Tables,
		Cfg:           config,
		Validate:      NewValidator(),
		Templates:     tmpl,
	}, nil
}

// NewValidator reports field errors by their form names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}
