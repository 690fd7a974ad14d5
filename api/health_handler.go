package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const healthPingTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          pinger
	startupTime time.Time
}

func newHealthHandler(db pinger, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

// getHealth reports uptime and database reachability. An unreachable database
// answers 503 so load balancers stop routing here.
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		response := healthResponse{
			Status:   "ok",
			Uptime:   time.Since(h.startupTime).Round(time.Second).String(),
			Database: "ok",
		}
		status := http.StatusOK
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("Database ping failed")
			response.Status = "degraded"
			response.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		h.responder.WriteJSONStatus(w, status, response)
	}
}
