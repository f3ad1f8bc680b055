package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/odyssey-erp/cadastro/internal/shared"
	"github.com/odyssey-erp/cadastro/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavItem is one link of the persistent navigation bar.
type NavItem struct {
	Label string
	Path  string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Nav         []NavItem
	Operator    string
	HasToken    bool
	// Failure is shown as a banner when a backend call failed without a
	// message the user can act on.
	Failure string
	Data    any
}

// Active reports whether item points at the current page or one of its
// add/edit forms.
func (d TemplateData) Active(item NavItem) bool {
	if item.Path == "/" {
		return d.CurrentPath == "/"
	}
	if d.CurrentPath == item.Path {
		return true
	}
	slug := strings.TrimPrefix(item.Path, "/listar-")
	if slug == item.Path {
		return false
	}
	return strings.HasPrefix(d.CurrentPath, "/listar-"+slug) ||
		d.CurrentPath == "/add-"+slug ||
		strings.HasPrefix(d.CurrentPath, "/edit-"+slug+"/")
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return NewEngineFS(web.Templates)
}

// NewEngineFS parses templates from fsys, laid out like web.Templates.
func NewEngineFS(fsys fs.FS) (*Engine, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(fsys, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template and writes it with status. Nothing is
// written when the template fails.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
