package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/app"
	"github.com/MKhiriev/go-task-sync/internal/service"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

var errorStatusMap = map[error]int{
	ErrInvalidJSON:                http.StatusBadRequest,
	service.ErrInvalidCredentials: http.StatusBadRequest,
	adapter.ErrInvalidServerURL:   http.StatusBadRequest,
	service.ErrInvalidTask:        http.StatusBadRequest,
	store.ErrTaskNotFound:         http.StatusNotFound,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// statusFromResult maps a sync outcome to an HTTP status. The result itself
// is always returned in the body.
func statusFromResult(result models.SyncResult) int {
	switch {
	case result.Queued:
		return http.StatusAccepted
	case result.Status != models.SyncStatusError:
		return http.StatusOK
	case result.Message == app.MsgSyncDisabled:
		return http.StatusConflict
	}

	switch result.ErrorCategory {
	case models.ErrorCategoryAuth:
		return http.StatusUnauthorized
	case models.ErrorCategoryTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}
