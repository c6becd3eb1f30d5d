package http

import (
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/service"
)

type Handler struct {
	sync  service.SyncController
	tasks service.TaskController

	logger *logger.Logger
}

func NewHandler(sync service.SyncController, tasks service.TaskController, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		sync:   sync,
		tasks:  tasks,
		logger: logger,
	}
}
