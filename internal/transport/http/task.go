package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Raisondetr3/todo-service/internal/errors"
	"github.com/Raisondetr3/todo-service/internal/model"
	"github.com/Raisondetr3/todo-service/internal/validation"
	"github.com/Raisondetr3/todo-service/pkg/dto"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

func (h *HTTPHandlers) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var completed *bool
	if query.Has("completed") {
		value, err := strconv.ParseBool(query.Get("completed"))
		if err != nil {
			writeError(w, r, errors.BadRequest(fmt.Sprintf("Invalid value '%s' for parameter 'completed'", query.Get("completed"))))
			return
		}
		completed = &value
	}

	tasks, err := h.tasks.Filter(r.Context(), completed, query.Get("title"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTaskResponses(tasks))
}

func (h *HTTPHandlers) HandleSearchTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("keyword") {
		writeError(w, r, errors.BadRequest("Required parameter 'keyword' is missing"))
		return
	}

	tasks, err := h.tasks.SearchByKeyword(r.Context(), query.Get("keyword"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTaskResponses(tasks))
}

func (h *HTTPHandlers) HandleTaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tasks.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.StatsResponse{
		Completed: stats.Completed,
		Pending:   stats.Pending,
		Total:     stats.Total(),
	})
}

func (h *HTTPHandlers) HandleRecentTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.Recent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTaskResponses(tasks))
}

func (h *HTTPHandlers) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTaskResponse(task))
}

func (h *HTTPHandlers) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), model.NewTask(req.Title, req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	writeJSON(w, r, http.StatusCreated, toTaskResponse(task))
}

func (h *HTTPHandlers) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.UpdateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), id, &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   *req.Completed,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTaskResponse(task))
}

func (h *HTTPHandlers) HandleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.ToggleCompletion(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTaskResponse(task))
}

func (h *HTTPHandlers) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func taskID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("Invalid task id '%s'", raw))
	}
	return id, nil
}

// decodeBody parses the JSON body into dst and runs struct validation on it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.BadRequest("Malformed JSON request")
	}

	if fields := validation.Struct(dst); fields != nil {
		return errors.Validation(fields)
	}
	return nil
}

func toTaskResponse(task *model.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
}

func toTaskResponses(tasks []*model.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	return out
}
