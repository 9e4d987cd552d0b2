package apicommon

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/surveypro/saas-backend/db"
	"go.vocdoni.io/dvote/log"
)

// CompanyFromContext retrieves the company from the context provided,
// expected to be the context of a request handled by the company
// authenticator middleware.
func CompanyFromContext(ctx context.Context) (*db.Company, bool) {
	company, ok := ctx.Value(CompanyMetadataKey).(*db.Company)
	return company, ok && company != nil
}

// UserFromContext retrieves the user from the context provided, expected to be
// the context of a request handled by the user authenticator middleware.
func UserFromContext(ctx context.Context) (*db.User, bool) {
	user, ok := ctx.Value(UserMetadataKey).(*db.User)
	return user, ok && user != nil
}

// HTTPWriteJSON helper function allows to write a JSON response.
func HTTPWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// HTTPWriteOK helper function allows to write an OK response.
func HTTPWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}
