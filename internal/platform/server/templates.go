package server

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02 15:04")
		},
		"toUpper": strings.ToUpper,
		"excerpt": func(s string, n int) string {
			runes := []rune(strings.TrimSpace(s))
			if len(runes) <= n {
				return string(runes)
			}
			return strings.TrimSpace(string(runes[:n])) + "…"
		},
	}
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
}
