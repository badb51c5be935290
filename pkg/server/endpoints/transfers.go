package endpoints

import (
	"net/http"
	"strconv"

	"github.com/doodlesbykumbi/ownership-manager/pkg/server"
	"github.com/doodlesbykumbi/ownership-manager/pkg/transfer"
)

// HeaderChangedBy names the initiator when the body leaves changed_by empty.
const HeaderChangedBy = "X-Ownership-User"

// RegisterTransferEndpoints registers the transfer trigger and audit log
func RegisterTransferEndpoints(s *server.Server) {
	limit := 0
	if s.Config != nil {
		limit = s.Config.AuditListLimit
	}

	s.Router.HandleFunc("/tenants/{id}/transfers", handleTransfer(s.Tenants, s.Transfers)).Methods("POST")
	s.Router.HandleFunc("/tenants/{id}/audit", handleAuditLog(s.Tenants, s.Audit, limit)).Methods("GET")
}

func handleTransfer(tenants server.Tenants, engine server.Transferer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := tenantID(w, r)
		if !ok {
			return
		}
		var req transfer.Request
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.ObjectIDs) == 0 || req.NewOwnerID == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "object_ids and new_owner_id are required")
			return
		}
		if req.ChangedBy == "" {
			req.ChangedBy = r.Header.Get(HeaderChangedBy)
		}

		cfg, err := tenants.Config(r.Context(), id)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, engine.Transfer(r.Context(), *cfg, req))
	}
}

func handleAuditLog(tenants server.Tenants, log server.AuditLog, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, ok := tenantSlug(w, r, tenants)
		if !ok {
			return
		}
		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		entries, err := log.List(r.Context(), slug, limit)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, entries)
	}
}
