package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-core/internal/api/shared"
	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/service"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	tasks  service.TaskService
	lists  service.ListService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler. The list service backs the
// stats endpoint.
func NewTaskHandler(tasks service.TaskService, lists service.ListService, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		lists:  lists,
		logger: log.With("component", "task_handler"),
	}
}

// GetListTasks handles GET /api/lists/{listID}/tasks requests.
func (h *TaskHandler) GetListTasks(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	showCompleted, err := queryBool(r, "show_completed", true)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.GetListTasks(r.Context(), listID, showCompleted)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tasks")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// CreateTask handles POST /api/lists/{listID}/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CreateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	fields := req.TaskFields
	fields.ListID = nil
	fields.Title = nil

	id, err := h.tasks.CreateTask(r.Context(), listID, req.Title, fields)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task created", slog.Int64("task_id", id))
	shared.RespondWithJSON(w, r, http.StatusCreated, IDResponse{ID: id})
}

// GetTask handles GET /api/tasks/{taskID} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/{taskID} requests. The body is a
// partial task; absent fields are left unchanged.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var fields domain.TaskFields
	if err := shared.DecodeJSON(w, r, &fields); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), id, fields)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpdatedResponse{Updated: updated})
}

// DeleteTask handles DELETE /api/tasks/{taskID} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deleted, err := h.tasks.DeleteTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedResponse{Deleted: deleted})
}

// ToggleTask handles POST /api/tasks/{taskID}/toggle requests.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	completed, err := h.tasks.ToggleTaskCompleted(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ToggleResponse{Completed: completed})
}

// SearchTasks handles GET /api/tasks/search?q=milk&limit=20 requests.
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.SearchTasks(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search tasks")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// BatchComplete handles POST /api/tasks/batch/complete requests. The
// completion flag defaults to true.
func (h *TaskHandler) BatchComplete(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	count, err := h.tasks.BatchUpdateCompletion(r.Context(), req.IDs, completed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// BatchDelete handles POST /api/tasks/batch/delete requests.
func (h *TaskHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	count, err := h.tasks.BatchDeleteTasks(r.Context(), req.IDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// Stats handles GET /api/stats requests.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		Tasks: h.tasks.Stats(),
		Lists: h.lists.Stats(),
	})
}
