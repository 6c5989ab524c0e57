package opshttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/keithlinneman/avatars-web/internal/log"
)

// LandingControl lets operators drive the landing page watcher by hand.
// *content.Watcher satisfies it.
type LandingControl interface {
	Poll(ctx context.Context) (bool, error)
	Rollback(ctx context.Context) bool
}

const (
	landingReloadPath   = "/-/landing/reload"
	landingRollbackPath = "/-/landing/rollback"
)

type landingResult struct {
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

func registerLanding(mux *http.ServeMux, L log.Logger, lc LandingControl) {
	mux.HandleFunc("POST "+landingReloadPath, func(w http.ResponseWriter, r *http.Request) {
		changed, err := lc.Poll(r.Context())
		if err != nil {
			L.Error(r.Context(), err, "manual landing reload failed")
			writeLanding(w, http.StatusBadGateway, landingResult{Error: err.Error()})
			return
		}
		L.Info(r.Context(), "manual landing reload", "changed", changed)
		writeLanding(w, http.StatusOK, landingResult{Changed: changed})
	})
	mux.HandleFunc("POST "+landingRollbackPath, func(w http.ResponseWriter, r *http.Request) {
		if !lc.Rollback(r.Context()) {
			writeLanding(w, http.StatusConflict, landingResult{Error: "no previous landing content"})
			return
		}
		writeLanding(w, http.StatusOK, landingResult{Changed: true})
	})
}

func writeLanding(w http.ResponseWriter, status int, res landingResult) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
