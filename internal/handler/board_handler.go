package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"tastemate/internal/models"
	"tastemate/internal/repository"
	"tastemate/internal/service"
)

// formOverhead leaves room for the text fields next to the image part.
const formOverhead = 1 << 20

type PostForm struct {
	Category string `form:"category" validate:"required"`
	Title    string `form:"title" validate:"required,max=200"`
	Content  string `form:"content" validate:"required,max=10000"`
}

type CommentForm struct {
	Content string `form:"content" validate:"required,max=1000"`
}

func (h *Handlers) Community(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListAll(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "community.html", PageData{Title: "Community", Posts: posts})
}

// CategoryList serves /community/list/{category}. Unknown boards are a 404.
func (h *Handlers) CategoryList(w http.ResponseWriter, r *http.Request) {
	category, ok := models.ParseCategory(mux.Vars(r)["category"])
	if !ok {
		h.renderMessage(w, r, http.StatusNotFound, service.ErrInvalidCategory.Error())
		return
	}

	posts, err := h.PostService.ListByCategory(r.Context(), category)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "community.html", PageData{
		Title:    category.Label(),
		Category: category,
		Posts:    posts,
	})
}

func (h *Handlers) WritePage(w http.ResponseWriter, r *http.Request) {
	if service.SessionFromContext(r.Context()) == nil {
		h.HandleError(w, r, service.ErrUnauthenticated)
		return
	}

	category, _ := models.ParseCategory(r.URL.Query().Get("category"))
	h.render(w, r, http.StatusOK, "write.html", h.writePageData(category, nil))
}

func (h *Handlers) writePageData(category models.Category, form map[string]string) PageData {
	return PageData{
		Title:          "New post",
		Category:       category,
		Form:           form,
		UploadsEnabled: h.PostService.UploadsEnabled(),
		MaxUploadSize:  h.Cfg.MaxUploadSize,
	}
}

func (h *Handlers) WritePost(w http.ResponseWriter, r *http.Request) {
	session := service.SessionFromContext(r.Context())
	if session == nil {
		h.HandleError(w, r, service.ErrUnauthenticated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+formOverhead)
	if err := parsePostForm(r, h.Cfg.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.renderMessage(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload is larger than %s", humanize.Bytes(uint64(h.Cfg.MaxUploadSize))))
			return
		}
		h.renderMessage(w, r, http.StatusBadRequest, "invalid form data")
		return
	}

	form := PostForm{
		Category: strings.TrimSpace(r.PostForm.Get("category")),
		Title:    strings.TrimSpace(r.PostForm.Get("title")),
		Content:  strings.TrimSpace(r.PostForm.Get("content")),
	}
	category, _ := models.ParseCategory(form.Category)
	fields := map[string]string{"title": form.Title, "content": form.Content}

	if err := h.Validate.Struct(form); err != nil {
		page := h.writePageData(category, fields)
		page.Error = validationMessage(err)
		h.render(w, r, http.StatusBadRequest, "write.html", page)
		return
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		file = nil
	case err != nil:
		h.renderMessage(w, r, http.StatusBadRequest, "invalid image upload")
		return
	default:
		defer file.Close()
		if !h.PostService.UploadsEnabled() {
			h.HandleError(w, r, service.ErrUploadsDisabled)
			return
		}
	}

	post, err := h.PostService.CreatePost(r.Context(), session, repository.CreatePostRequest{
		Category: category,
		Title:    form.Title,
		Content:  form.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			page := h.writePageData(category, fields)
			page.Error = err.Error()
			h.render(w, r, http.StatusBadRequest, "write.html", page)
			return
		}
		h.HandleError(w, r, err)
		return
	}

	if file != nil {
		if err := h.attachImage(r, session, post.ID, file, header); err != nil {
			status, message := StatusFor(err)
			if status == http.StatusInternalServerError {
				log.Printf("image upload for post %d failed: %v", post.ID, err)
			}
			h.renderMessage(w, r, status, "The post was saved without its image: "+message)
			return
		}
	}

	http.Redirect(w, r, "/community/list/"+post.Category.Slug(), http.StatusSeeOther)
}

func (h *Handlers) attachImage(r *http.Request, session *models.SessionSnapshot, postID int64, file multipart.File, header *multipart.FileHeader) error {
	_, err := h.PostService.AttachImage(r.Context(), session, postID, header.Filename, file, header.Size)
	return err
}

func parsePostForm(r *http.Request, maxMemory int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

func (h *Handlers) PostDetail(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.HandleError(w, r, service.ErrPostNotFound)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), postID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "post.html", PageData{Title: post.Title, Category: post.Category, Post: post})
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	session := service.SessionFromContext(r.Context())
	if session == nil {
		h.HandleError(w, r, service.ErrUnauthenticated)
		return
	}

	postID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.HandleError(w, r, service.ErrPostNotFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, "invalid form data")
		return
	}

	form := CommentForm{Content: strings.TrimSpace(r.PostForm.Get("content"))}
	if err := h.Validate.Struct(form); err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	if _, err := h.PostService.AddComment(r.Context(), session, postID, form.Content); err != nil {
		h.HandleError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/community/post/%d", postID), http.StatusSeeOther)
}
