package handler

import (
	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/handler/http"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the transports enabled in cfg. The control API is
// optional, so an empty address is reported with ErrNoHandlersAreCreated and
// the caller decides whether that is fatal.
func NewHandlers(sync service.SyncController, tasks service.TaskController, cfg config.ClientServer, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(sync, tasks, logger)
	}

	if handlers.HTTP == nil {
		return nil, ErrNoHandlersAreCreated
	}

	return handlers, nil
}
