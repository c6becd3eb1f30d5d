package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/app"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/service"
	"github.com/MKhiriev/go-task-sync/internal/utils"
	"github.com/MKhiriev/go-task-sync/models"
)

// messageResponse is the body of endpoints that only acknowledge an action.
type messageResponse struct {
	Message string `json:"message"`
	Dropped int    `json:"dropped,omitempty"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	status, err := h.sync.Status(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error loading sync status")
		utils.WriteError(w, app.MsgInternalServerError, statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) requestSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	// a client hanging up must not count as a failed sync
	result := h.sync.RequestSync(context.WithoutCancel(r.Context()), models.SyncPriorityUser)

	log.Info().
		Str("func", "*Handler.requestSync").
		Str("status", string(result.Status)).
		Bool("queued", result.Queued).
		Msg("user sync requested")

	utils.WriteJSON(w, result, statusFromResult(result))
}

func (h *Handler) enableSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var creds models.AuthCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Err(err).Str("func", "*Handler.enableSync").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	cfg, err := h.sync.EnableSync(r.Context(), creds)
	if err != nil {
		status := statusFromError(err)
		log.Err(err).Str("func", "*Handler.enableSync").Int("status", status).Msg("error enabling sync")
		switch {
		case errors.Is(err, adapter.ErrInvalidServerURL):
			utils.WriteError(w, app.MsgInvalidDataProvided, status)
		case errors.Is(err, service.ErrInvalidCredentials):
			utils.WriteError(w, app.MsgMissingCredentials, status)
		default:
			utils.WriteError(w, app.MsgInternalServerError, status)
		}
		return
	}

	// the token never leaves the daemon
	cfg.Token = ""
	cfg.TokenExpiresAt = nil

	utils.WriteJSON(w, cfg, http.StatusOK)
}

func (h *Handler) disableSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.sync.DisableSync(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.disableSync").Msg("error disabling sync")
		utils.WriteError(w, app.MsgInternalServerError, statusFromError(err))
		return
	}

	utils.WriteJSON(w, messageResponse{Message: app.MsgSyncDisabledOK}, http.StatusOK)
}

func (h *Handler) cancelPending(w http.ResponseWriter, r *http.Request) {
	dropped := h.sync.CancelPending()

	logger.FromRequest(r).Info().
		Str("func", "*Handler.cancelPending").
		Int("dropped", dropped).
		Msg("queued sync requests cancelled")

	utils.WriteJSON(w, messageResponse{Message: app.MsgPendingCancelled, Dropped: dropped}, http.StatusOK)
}

func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) {
	report := h.sync.Health(r.Context())

	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, report, status)
}
