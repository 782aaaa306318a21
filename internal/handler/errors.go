package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tastemate/internal/models"
	"tastemate/internal/service"
)

// ErrorResponse - standard error body for JSON routes
type ErrorResponse struct {
	Error string `json:"error"`
}

// PageData is the single view model passed to every page template.
type PageData struct {
	Title          string
	Session        *models.SessionSnapshot
	Message        string
	Error          string
	Form           map[string]string
	Category       models.Category
	Posts          []models.Post
	Post           *models.Post
	Users          []models.User
	UploadsEnabled bool
	MaxUploadSize  int64
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// StatusFor maps a service error to the HTTP status and the message shown to the user.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateLogin):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrPasswordTooLong),
		errors.Is(err, service.ErrUploadsDisabled),
		errors.Is(err, service.ErrUnsupportedImage),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleError answers a browser request. Anonymous users are sent to the
// login page; everything else renders the message page.
func (h *Handlers) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrUnauthenticated) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	status, message := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	h.renderMessage(w, r, status, message)
}

func (h *Handlers) handleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	WriteError(w, message, status)
}

func (h *Handlers) renderMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "message.html", PageData{
		Title:   http.StatusText(status),
		Message: message,
	})
}

// render executes into a buffer first so a template failure still yields a clean 500.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	if data.Session == nil {
		data.Session = service.SessionFromContext(r.Context())
	}

	var buf bytes.Buffer
	if err := h.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("failed to render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("failed to write %s: %v", name, err)
	}
}

// validationMessage turns the first validator failure into a short sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid form data"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "alphanumunicode":
		return fe.Field() + " may only contain letters and digits"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
