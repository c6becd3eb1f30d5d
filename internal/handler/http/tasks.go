package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-task-sync/internal/app"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/service"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/utils"
	"github.com/MKhiriev/go-task-sync/models"
)

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listTasks").Msg("error listing tasks")
		writeTaskError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	utils.WriteJSON(w, tasks, http.StatusOK)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	task, err := h.tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.getTask").Msg("error getting task")
		writeTaskError(w, err)
		return
	}

	utils.WriteJSON(w, task, http.StatusOK)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		log.Err(err).Str("func", "*Handler.createTask").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	created, err := h.tasks.Create(r.Context(), task)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createTask").Msg("error creating task")
		writeTaskError(w, err)
		return
	}

	log.Info().Str("func", "*Handler.createTask").Str("task_id", created.ID).Msg("task created")
	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		log.Err(err).Str("func", "*Handler.updateTask").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}
	// the path decides which task is changed
	task.ID = chi.URLParam(r, "id")

	updated, err := h.tasks.Update(r.Context(), task)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateTask").Msg("error updating task")
		writeTaskError(w, err)
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteTask").Msg("error deleting task")
		writeTaskError(w, err)
		return
	}

	log.Info().Str("func", "*Handler.deleteTask").Str("task_id", id).Msg("task deleted")
	utils.WriteJSON(w, messageResponse{Message: app.MsgTaskDeleted}, http.StatusOK)
}

func writeTaskError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		utils.WriteError(w, app.MsgTaskNotFound, status)
	case errors.Is(err, service.ErrInvalidTask):
		utils.WriteError(w, app.MsgInvalidDataProvided, status)
	default:
		utils.WriteError(w, app.MsgInternalServerError, status)
	}
}
