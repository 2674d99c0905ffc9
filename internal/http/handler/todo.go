package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-web/internal/flash"
	"github.com/jaekwang-park/todo-web/internal/form"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/service"
)

const (
	// ListPath is the todo list and the target of every successful commit.
	ListPath = "/todos"

	maxFormBytes = 64 << 10
)

type TodoHandler struct {
	svc   *service.TodoService
	flash flash.Store
	views *view.Renderer
	now   func() time.Time
}

func NewTodoHandler(svc *service.TodoService, flash flash.Store, views *view.Renderer) *TodoHandler {
	return &TodoHandler{svc: svc, flash: flash, views: views, now: time.Now}
}

// ServeHTTP routes /todos, /todos/new and /todos/{id}/{edit,delete,toggle}.
func (h *TodoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, ListPath)
	path = strings.Trim(path, "/")

	// /todos
	if path == "" {
		if !allowMethods(w, r, http.MethodGet) {
			return
		}
		h.handleList(w, r)
		return
	}

	// /todos/new
	if path == "new" {
		if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
			return
		}
		h.handleCreate(w, r)
		return
	}

	// /todos/{id}/{action}
	parts := strings.Split(path, "/")
	if len(parts) != 2 {
		h.renderNotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		h.renderNotFound(w, r)
		return
	}

	switch parts[1] {
	case "edit":
		if allowMethods(w, r, http.MethodGet, http.MethodPost) {
			h.handleEdit(w, r, id)
		}
	case "delete":
		if allowMethods(w, r, http.MethodGet, http.MethodPost) {
			h.handleDelete(w, r, id)
		}
	case "toggle":
		if allowMethods(w, r, http.MethodPost) {
			h.handleToggle(w, r, id)
		}
	default:
		h.renderNotFound(w, r)
	}
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageList, view.ListPage{
		Flash:       h.popFlash(w, r),
		TodoSummary: summary,
		Now:         h.now(),
	})
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderForm(w, r, view.FormPage{Mode: view.ModeCreate})
		return
	}

	f, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Create(r.Context(), f)
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, r, view.FormPage{Mode: view.ModeCreate, Form: f, Errors: verr.FieldErrors})
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.redirectWithNotice(w, r, fmt.Sprintf(`TODO "%s" created successfully!`, todo.String()))
}

func (h *TodoHandler) handleEdit(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		todo, err := h.svc.GetByID(r.Context(), id)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.renderForm(w, r, view.FormPage{
			Mode: view.ModeEdit,
			Form: form.FromTodo(todo, h.svc.Location()),
			Todo: &todo,
		})
		return
	}

	f, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Update(r.Context(), id, f)
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, r, view.FormPage{Mode: view.ModeEdit, Form: f, Errors: verr.FieldErrors, Todo: &todo})
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.redirectWithNotice(w, r, fmt.Sprintf(`TODO "%s" updated successfully!`, todo.String()))
}

func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		todo, err := h.svc.GetByID(r.Context(), id)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, view.PageConfirmDelete, view.DeletePage{
			Flash: h.popFlash(w, r),
			Todo:  todo,
		})
		return
	}

	todo, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.redirectWithNotice(w, r, fmt.Sprintf(`TODO "%s" deleted successfully!`, todo.String()))
}

func (h *TodoHandler) handleToggle(w http.ResponseWriter, r *http.Request, id int64) {
	todo, err := h.svc.ToggleResolved(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	state := "unresolved"
	if todo.IsResolved {
		state = "resolved"
	}
	h.redirectWithNotice(w, r, fmt.Sprintf(`TODO "%s" marked as %s!`, todo.String(), state))
}

func (h *TodoHandler) decodeForm(w http.ResponseWriter, r *http.Request) (form.TodoForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		slog.WarnContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return form.TodoForm{}, false
	}
	return form.Decode(r.PostForm), true
}

func (h *TodoHandler) renderForm(w http.ResponseWriter, r *http.Request, page view.FormPage) {
	page.Flash = h.popFlash(w, r)
	h.render(w, r, http.StatusOK, view.PageForm, page)
}

func (h *TodoHandler) redirectWithNotice(w http.ResponseWriter, r *http.Request, msg string) {
	// A lost notice does not undo the committed change.
	if err := h.flash.Set(w, r, msg); err != nil {
		slog.ErrorContext(r.Context(), "failed to store flash", "error", err)
	}
	http.Redirect(w, r, ListPath, http.StatusFound)
}

func (h *TodoHandler) popFlash(w http.ResponseWriter, r *http.Request) string {
	msg, err := h.flash.Pop(w, r)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read flash", "error", err)
		return ""
	}
	return msg
}

func (h *TodoHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.views.Render(w, status, page, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *TodoHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, view.PageNotFound, view.MessagePage{Flash: h.popFlash(w, r)})
}

func (h *TodoHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.renderNotFound(w, r)
		return
	}

	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	h.render(w, r, http.StatusInternalServerError, view.PageError, view.MessagePage{Flash: h.popFlash(w, r)})
}

// allowMethods writes a 405 and reports false unless r uses one of methods.
// HEAD is accepted wherever GET is.
func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	allowed := make([]string, 0, len(methods)+1)
	for _, m := range methods {
		allowed = append(allowed, m)
		if m == http.MethodGet {
			allowed = append(allowed, http.MethodHead)
		}
	}
	for _, m := range allowed {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}
