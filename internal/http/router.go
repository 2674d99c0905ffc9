package http

import (
	"net/http"

	"github.com/jaekwang-park/todo-web/internal/flash"
	"github.com/jaekwang-park/todo-web/internal/http/handler"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/service"
)

func NewRouter(todoSvc *service.TodoService, flashes flash.Store, views *view.Renderer) http.Handler {
	mux := http.NewServeMux()

	// Health check for load balancers; also probes the store
	health := handler.NewHealthHandler(todoSvc)
	mux.Handle("/health", health)

	// Todo pages
	todoHandler := handler.NewTodoHandler(todoSvc, flashes, views)
	mux.Handle(handler.ListPath, todoHandler)
	mux.Handle(handler.ListPath+"/", todoHandler)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, handler.ListPath, http.StatusFound)
	})

	return mux
}
