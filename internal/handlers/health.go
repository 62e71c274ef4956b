package handlers

import (
	"net/http"

	"github.com/juancollazo-ch/monoparts-service/internal/config"
	"github.com/juancollazo-ch/monoparts-service/internal/models/serviceresponse"
)

// Health reports liveness plus the non-secret parts of cfg.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, serviceresponse.HealthReply{
			Status:      "ok",
			Environment: string(cfg.Environment),
			Callbacks:   cfg.Callbacks.Enabled,
		})
	}
}
