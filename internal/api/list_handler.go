package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-core/internal/api/shared"
	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/service"
)

// ListHandler handles list-related HTTP requests.
type ListHandler struct {
	lists  service.ListService
	logger *slog.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(lists service.ListService, log *slog.Logger) *ListHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ListHandler{
		lists:  lists,
		logger: log.With("component", "list_handler"),
	}
}

// GetLists handles GET /api/lists?category=daily requests.
func (h *ListHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = domain.CategoryDaily
	}

	refresh, err := queryBool(r, "refresh", false)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var opts []service.ReadOption
	if refresh {
		opts = append(opts, service.WithForceRefresh())
	}

	lists, err := h.lists.GetListsByCategory(r.Context(), category, opts...)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load lists")
		return
	}
	if lists == nil {
		lists = []*domain.TaskList{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, lists)
}

// GetList handles GET /api/lists/{listID} requests.
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "listID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	list, err := h.lists.GetList(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load list")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// CreateList handles POST /api/lists requests.
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	id, err := h.lists.CreateList(r.Context(), req.Name, req.Category)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create list")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("list created", slog.Int64("list_id", id))
	shared.RespondWithJSON(w, r, http.StatusCreated, IDResponse{ID: id})
}

// UpdateList handles PATCH /api/lists/{listID} requests.
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "listID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateListRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.lists.UpdateList(r.Context(), id, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update list")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpdatedResponse{Updated: updated})
}

// DeleteList handles DELETE /api/lists/{listID} requests.
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "listID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deleted, err := h.lists.DeleteList(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete list")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedResponse{Deleted: deleted})
}
