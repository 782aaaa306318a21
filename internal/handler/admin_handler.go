package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"tastemate/internal/models"
	"tastemate/internal/repository"
	"tastemate/internal/service"
)

type UpdateUserForm struct {
	UserID   int64  `form:"user_id" validate:"required,gt=0"`
	Nickname string `form:"nickname" validate:"required,max=32"`
	Role     string `form:"role" validate:"required,oneof=USER ADMIN"`
}

func (h *Handlers) AdminPage(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context(), service.SessionFromContext(r.Context()))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "admin.html", PageData{Title: "Members", Users: users})
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, "invalid form data")
		return
	}

	userID, _ := strconv.ParseInt(r.PostForm.Get("user_id"), 10, 64)
	form := UpdateUserForm{
		UserID:   userID,
		Nickname: strings.TrimSpace(r.PostForm.Get("nickname")),
		Role:     strings.ToUpper(strings.TrimSpace(r.PostForm.Get("role"))),
	}

	if err := h.Validate.Struct(form); err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	err := h.UserService.UpdateUser(r.Context(), service.SessionFromContext(r.Context()), repository.UpdateUserRequest{
		UserID:   form.UserID,
		Nickname: form.Nickname,
		Role:     models.Role(form.Role),
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
