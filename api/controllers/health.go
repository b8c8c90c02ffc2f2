package controllers

import (
	"net/http"

	"github.com/larderhq/larder-backend/api/responses"
	"github.com/larderhq/larder-backend/pkg/config"
	"github.com/larderhq/larder-backend/pkg/db"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Larder-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, pinger db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Larder-Env", cfg.App.Env)
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
