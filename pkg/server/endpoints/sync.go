package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/ownership-manager/pkg/server"
	"github.com/doodlesbykumbi/ownership-manager/pkg/syncer"
)

type syncResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// RegisterSyncEndpoints registers the per-tenant and batch sync triggers
func RegisterSyncEndpoints(s *server.Server) {
	concurrency := syncer.DefaultConcurrency
	if s.Config != nil && s.Config.SyncConcurrency > 0 {
		concurrency = s.Config.SyncConcurrency
	}

	s.Router.HandleFunc("/tenants/{id}/sync", handleSync(s.Tenants, s.Syncer)).Methods("POST")
	s.Router.HandleFunc("/sync", handleSyncAll(s.Tenants, s.Syncer, concurrency)).Methods("POST")
}

func handleSync(tenants server.Tenants, engine server.Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := tenantID(w, r)
		if !ok {
			return
		}
		cfg, err := tenants.Config(r.Context(), id)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		count, msg := engine.Sync(r.Context(), *cfg)
		respondWithJSON(w, http.StatusOK, syncResponse{Count: count, Message: msg})
	}
}

func handleSyncAll(tenants server.Tenants, engine server.Syncer, concurrency int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcomes, err := engine.SyncAll(r.Context(), tenants, concurrency)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, outcomes)
	}
}
