package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/poller"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type statusResponse struct {
	Status     string              `json:"status"`
	LastReport *domain.BatchReport `json:"last_report,omitempty"`
}

// newHealthHandler serves /healthz for liveness probes and /status with the
// last tick report.
func newHealthHandler(log logger.Logger, p poller.Client) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Health check request received", "method", r.Method, "url", r.URL.String())
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		resp := statusResponse{Status: "waiting for first tick"}
		if report, ok := p.LastReport(); ok {
			resp.Status = "ok"
			resp.LastReport = &report
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to write status", "error", err)
		}
	})

	return mux
}

func startHealthServer(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, p poller.Client) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           newHealthHandler(log, p),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("Starting health server", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Health server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
