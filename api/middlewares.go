package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/subscriptions"
)

// claimFromContext returns the string claim of a valid JWT token found by
// the verifier middleware.
func claimFromContext(ctx context.Context, claim string) (string, bool) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return "", false
	}
	if jwt.Validate(token, jwt.WithRequiredClaim(claim)) != nil {
		return "", false
	}
	id, ok := claims[claim].(string)
	return id, ok && id != ""
}

// companyAuthenticator is a middleware that requires a company token. It
// decodes the company identifier from the JWT token, gets the company from
// the survey store and adds it to the request context.
func (a *API) companyAuthenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := claimFromContext(r.Context(), apicommon.CompanyIDClaim)
		if !ok {
			errors.ErrUnauthorized.Withf("%s claim not found in JWT token", apicommon.CompanyIDClaim).Write(w)
			return
		}
		company, err := a.surveys.Company(companyID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				errors.ErrUnauthorized.Withf("company not found").Write(w)
				return
			}
			errors.ErrGenericInternalServerError.Withf("could not retrieve company: %v", err).Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), apicommon.CompanyMetadataKey, company)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userAuthenticator is a middleware that requires a user token. It works
// like companyAuthenticator with the user store.
func (a *API) userAuthenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := claimFromContext(r.Context(), apicommon.UserIDClaim)
		if !ok {
			errors.ErrUserUnauthorized.Withf("%s claim not found in JWT token", apicommon.UserIDClaim).Write(w)
			return
		}
		user, err := a.users.User(userID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				errors.ErrUserUnauthorized.Withf("user not found").Write(w)
				return
			}
			errors.ErrGenericInternalServerError.Withf("could not retrieve user: %v", err).Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), apicommon.UserMetadataKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// packageRequired is a middleware that rejects companies without a paid
// package. It must run after companyAuthenticator.
func (a *API) packageRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		company, _ := apicommon.CompanyFromContext(r.Context())
		if err := subscriptions.Guard(company, true); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validateBody decodes and validates the JSON body of the request into a
// new instance of model. Handlers get it back with bodyFromContext.
func (a *API) validateBody(model any) func(http.Handler) http.Handler {
	return a.validator.Body(model)
}
