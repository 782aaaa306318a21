package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"tastemate/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"bytes": func(n int64) string {
		return humanize.Bytes(uint64(n))
	},
	"comma": func(n int64) string {
		return humanize.Comma(n)
	},
	"categories": func() []models.Category {
		return models.Categories
	},
}

// ParseTemplates loads every page template. Pages are addressed by file name,
// for example "index.html".
func ParseTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
