// Package view renders the HTML pages of the todo application.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/jaekwang-park/todo-web/internal/form"
	"github.com/jaekwang-park/todo-web/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageList          = "todo_list.html"
	PageForm          = "todo_form.html"
	PageConfirmDelete = "todo_confirm_delete.html"
	PageNotFound      = "not_found.html"
	PageError         = "error.html"
)

const (
	layoutFile    = "base.html"
	displayLayout = "Jan 2, 2006 15:04"
	templatesDir  = "templates"
)

type Mode string

const (
	ModeCreate Mode = "Create"
	ModeEdit   Mode = "Edit"
)

// ListPage is the context of the todo list.
type ListPage struct {
	Flash string
	model.TodoSummary
	Now time.Time
}

// FormPage is the context of the create and edit forms. Todo is nil in create mode.
type FormPage struct {
	Flash  string
	Mode   Mode
	Form   form.TodoForm
	Errors map[string][]string
	Todo   *model.Todo
}

// DeletePage is the context of the delete confirmation.
type DeletePage struct {
	Flash string
	Todo  model.Todo
}

// MessagePage is the context of the not-found and error pages.
type MessagePage struct {
	Flash   string
	Message string
}

// Renderer holds the parsed templates. It is built once at startup and is safe
// for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the base layout; dates are shown in loc.
func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.In(loc).Format(displayLayout)
		},
	}

	names, err := fs.Glob(templateFS, templatesDir+"/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	layout := templatesDir + "/" + layoutFile
	for _, name := range names {
		if name == layout {
			continue
		}
		tmpl, err := template.New(layoutFile).Funcs(funcs).ParseFS(templateFS, layout, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name[len(templatesDir)+1:]] = tmpl
	}

	return r, nil
}

// Render executes page into a buffer and writes it with status, so a
// template failure never produces a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
