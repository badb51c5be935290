package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
	"github.com/doodlesbykumbi/ownership-manager/pkg/tenant"
	"github.com/doodlesbykumbi/ownership-manager/pkg/vault"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	var verr *tenant.ValidationError
	var derr *vault.DecryptionError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateTenant), errors.Is(err, tenant.ErrInactive):
		return http.StatusConflict
	case errors.As(err, &derr):
		return http.StatusFailedDependency
	}
	return http.StatusInternalServerError
}

func respondWithErr(w http.ResponseWriter, err error) {
	respondWithError(w, statusFor(err), err.Error())
}

// tenantID parses the {id} route variable.
func tenantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid tenant id")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}
