package endpoints

import (
	"context"
	"net/http"

	"github.com/doodlesbykumbi/ownership-manager/pkg/inventory"
	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/server"
)

// RegisterInventoryEndpoints registers the object listing and the
// selectors the front end populates its filters from
func RegisterInventoryEndpoints(s *server.Server) {
	tenants, inv := s.Tenants, s.Inventory

	s.Router.HandleFunc("/tenants/{id}/objects", handleListObjects(tenants, inv)).Methods("GET")
	s.Router.HandleFunc("/tenants/{id}/object-types", handleSelector(tenants, func(ctx context.Context, slug string) (interface{}, error) {
		return inv.ObjectTypes(ctx, slug)
	})).Methods("GET")
	s.Router.HandleFunc("/tenants/{id}/owners", handleSelector(tenants, func(ctx context.Context, slug string) (interface{}, error) {
		return inv.Owners(ctx, slug)
	})).Methods("GET")
	s.Router.HandleFunc("/tenants/{id}/streams", handleSelector(tenants, func(ctx context.Context, slug string) (interface{}, error) {
		return inv.Streams(ctx, slug)
	})).Methods("GET")
	s.Router.HandleFunc("/tenants/{id}/users", handleSelector(tenants, func(ctx context.Context, slug string) (interface{}, error) {
		return inv.Users(ctx, slug)
	})).Methods("GET")
	s.Router.HandleFunc("/tenants/{id}/generations", handleSelector(tenants, func(ctx context.Context, slug string) (interface{}, error) {
		return inv.Generations(ctx, slug)
	})).Methods("GET")
}

// tenantSlug resolves {id} to the tenant's slug. Inactive tenants stay
// readable; their history is kept.
func tenantSlug(w http.ResponseWriter, r *http.Request, tenants server.Tenants) (string, bool) {
	id, ok := tenantID(w, r)
	if !ok {
		return "", false
	}
	t, err := tenants.Get(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return "", false
	}
	return t.Slug, true
}

func handleListObjects(tenants server.Tenants, inv server.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, ok := tenantSlug(w, r, tenants)
		if !ok {
			return
		}
		q := r.URL.Query()
		filter := inventory.Filter{
			ObjectType: model.ObjectType(q.Get("type")),
			OwnerID:    q.Get("owner"),
			StreamID:   q.Get("stream"),
			Search:     q.Get("search"),
		}
		if filter.ObjectType != "" {
			typ, err := model.ParseObjectType(string(filter.ObjectType))
			if err != nil {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			filter.ObjectType = typ
		}
		objects, err := inv.ListObjects(r.Context(), slug, filter)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, objects)
	}
}

func handleSelector(tenants server.Tenants, list func(ctx context.Context, slug string) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, ok := tenantSlug(w, r, tenants)
		if !ok {
			return
		}
		out, err := list(r.Context(), slug)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}
