package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/phrazzld/todo-core/internal/api/middleware"
	"github.com/phrazzld/todo-core/internal/api/shared"
	"github.com/phrazzld/todo-core/internal/service"
)

// NewRouter creates the application router with every route and middleware.
func NewRouter(tasks service.TaskService, lists service.ListService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	listHandler := NewListHandler(lists, logger)
	taskHandler := NewTaskHandler(tasks, lists, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/lists", func(r chi.Router) {
			r.Get("/", listHandler.GetLists)
			r.Post("/", listHandler.CreateList)

			r.Route("/{listID}", func(r chi.Router) {
				r.Get("/", listHandler.GetList)
				r.Patch("/", listHandler.UpdateList)
				r.Delete("/", listHandler.DeleteList)

				r.Get("/tasks", taskHandler.GetListTasks)
				r.Post("/tasks", taskHandler.CreateTask)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/search", taskHandler.SearchTasks)
			r.Post("/batch/complete", taskHandler.BatchComplete)
			r.Post("/batch/delete", taskHandler.BatchDelete)

			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Patch("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/toggle", taskHandler.ToggleTask)
			})
		})

		r.Get("/stats", taskHandler.Stats)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	})

	return r
}
