package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/server"
	"github.com/doodlesbykumbi/ownership-manager/pkg/tenant"
)

type createdResponse struct {
	ID    int64  `json:"id"`
	Error string `json:"error,omitempty"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

type connectionResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// RegisterTenantEndpoints registers tenant CRUD and connection testing
func RegisterTenantEndpoints(s *server.Server) {
	tenants := s.Tenants

	s.Router.HandleFunc("/tenants", handleListTenants(tenants)).Methods("GET")
	s.Router.HandleFunc("/tenants", handleRegisterTenant(tenants)).Methods("POST")
	s.Router.HandleFunc("/tenants/{id}", handleGetTenant(tenants)).Methods("GET")
	s.Router.HandleFunc("/tenants/{id}", handleUpdateTenant(tenants)).Methods("PATCH")
	s.Router.HandleFunc("/tenants/{id}", handleDeactivateTenant(tenants)).Methods("DELETE")
	s.Router.HandleFunc("/tenants/{id}/test", handleTestConnection(tenants)).Methods("POST")
}

func handleListTenants(tenants server.Tenants) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := tenants.List(r.Context())
		if err != nil {
			respondWithErr(w, err)
			return
		}
		if list == nil {
			list = []model.Tenant{}
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleRegisterTenant(tenants server.Tenants) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenant.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id, err := tenants.Register(r.Context(), req)
		if err != nil && id == 0 {
			respondWithErr(w, err)
			return
		}
		if err != nil {
			// Registered, but a scoped table is missing; provisioning can be retried.
			respondWithJSON(w, http.StatusAccepted, createdResponse{ID: id, Error: err.Error()})
			return
		}
		respondWithJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func handleGetTenant(tenants server.Tenants) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := tenantID(w, r)
		if !ok {
			return
		}
		t, err := tenants.Get(r.Context(), id)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, t)
	}
}

func handleUpdateTenant(tenants server.Tenants) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := tenantID(w, r)
		if !ok {
			return
		}
		var u model.TenantUpdate
		if !decodeJSON(w, r, &u) {
			return
		}
		changed, err := tenants.Update(r.Context(), id, u)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, changedResponse{Changed: changed})
	}
}

func handleDeactivateTenant(tenants server.Tenants) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := tenantID(w, r)
		if !ok {
			return
		}
		changed, err := tenants.Deactivate(r.Context(), id)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, changedResponse{Changed: changed})
	}
}

func handleTestConnection(tenants server.Tenants) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := tenantID(w, r)
		if !ok {
			return
		}
		success, msg := tenants.TestConnection(r.Context(), id)
		respondWithJSON(w, http.StatusOK, connectionResponse{OK: success, Message: msg})
	}
}
