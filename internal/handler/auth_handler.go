package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"tastemate/internal/repository"
	"tastemate/internal/service"
)

// bcrypt rejects passwords over 72 bytes; multibyte text reaches that before 72 characters.
const maxPasswordBytes = 72

type RegisterForm struct {
	Username string `form:"username" validate:"required,min=3,max=32,alphanumunicode"`
	Password string `form:"password" validate:"required,min=4"`
	Nickname string `form:"nickname" validate:"required,max=32"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", PageData{Title: "Sign up"})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, "invalid form data")
		return
	}

	form := RegisterForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		Nickname: strings.TrimSpace(r.PostForm.Get("nickname")),
	}
	page := PageData{
		Title: "Sign up",
		Form:  map[string]string{"username": form.Username, "nickname": form.Nickname},
	}

	if err := h.Validate.Struct(form); err != nil {
		page.Error = validationMessage(err)
		h.render(w, r, http.StatusBadRequest, "register.html", page)
		return
	}
	if len(form.Password) > maxPasswordBytes {
		page.Error = service.ErrPasswordTooLong.Error()
		h.render(w, r, http.StatusBadRequest, "register.html", page)
		return
	}

	_, err := h.AuthService.Register(r.Context(), repository.CreateUserRequest{
		Username: form.Username,
		Password: form.Password,
		Nickname: form.Nickname,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateLogin) || errors.Is(err, service.ErrPasswordTooLong) {
			page.Error = err.Error()
			status, _ := StatusFor(err)
			h.render(w, r, status, "register.html", page)
			return
		}
		h.HandleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	page := PageData{Title: "Log in"}
	if r.URL.Query().Get("registered") != "" {
		page.Message = "Account created, you can log in now."
	}
	h.render(w, r, http.StatusOK, "login.html", page)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, "invalid form data")
		return
	}

	form := LoginForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	page := PageData{
		Title: "Log in",
		Form:  map[string]string{"username": form.Username},
	}

	if err := h.Validate.Struct(form); err != nil {
		page.Error = validationMessage(err)
		h.render(w, r, http.StatusBadRequest, "login.html", page)
		return
	}

	session, token, err := h.AuthService.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			page.Error = err.Error()
			h.render(w, r, http.StatusUnauthorized, "login.html", page)
			return
		}
		h.HandleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
