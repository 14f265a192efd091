package http

import (
	"embed"
	"html/template"
	"time"

	"socialboard/internal/domain"
	"socialboard/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// page is the data handed to every template.
type page struct {
	Title     string
	Viewer    *domain.User
	Error     string
	Posts     []domain.Post
	Profile   *service.Profile
	Own       bool
	Following bool
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 15:04")
		},
		"liked": func(p domain.Post, viewer *domain.User) bool {
			return viewer != nil && p.LikedBy(viewer.ID)
		},
	}).ParseFS(templateFS, "templates/*.tmpl")
}
