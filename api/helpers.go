package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/auth"
	"github.com/surveypro/saas-backend/builder"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/internal"
	"github.com/surveypro/saas-backend/surveys"
	"github.com/surveypro/saas-backend/taking"
	"github.com/surveypro/saas-backend/users"
	"github.com/surveypro/saas-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// buildLoginResponse creates a JWT token carrying the given claim. The token
// is signed with the API secret and is valid for apicommon.JWTExpiration.
func (a *API) buildLoginResponse(claim, id string) (*apicommon.LoginResponse, error) {
	expiration := time.Now().Add(apicommon.JWTExpiration)
	j := jwt.New()
	if err := j.Set(claim, id); err != nil {
		return nil, err
	}
	if err := j.Set(jwt.ExpirationKey, expiration); err != nil {
		return nil, err
	}
	jmap, err := j.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	_, token, err := a.auth.Encode(jmap)
	if err != nil {
		return nil, err
	}
	return &apicommon.LoginResponse{Token: token, Expirity: expiration}, nil
}

// bodyFromContext returns the request body decoded and validated by the
// validateBody middleware. Requests that skipped it, like those without a
// JSON content type, are decoded and validated here.
func bodyFromContext[T any](a *API, r *http.Request) (*T, error) {
	if body, ok := validator.ValidatedBody[T](r.Context()); ok {
		return body, nil
	}
	body := new(T)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		return nil, errors.ErrMalformedBody
	}
	if err := a.validator.Validate(body); err != nil {
		return nil, errors.ErrMalformedBody.WithErr(err)
	}
	return body, nil
}

// ownedSurvey returns the survey named by the URL if it belongs to the
// company of the request.
func (a *API) ownedSurvey(r *http.Request) (*db.Survey, *db.Company, error) {
	company, ok := apicommon.CompanyFromContext(r.Context())
	if !ok {
		return nil, nil, errors.ErrUnauthorized
	}
	survey, err := a.surveys.Survey(chi.URLParam(r, "surveyId"))
	if err != nil {
		return nil, nil, err
	}
	if survey.CompanyID != company.ID {
		return nil, nil, errors.ErrNotSurveyOwner
	}
	return survey, company, nil
}

// normalizedEmail trims and lowercases the email and checks its format.
func normalizedEmail(email string) (string, error) {
	email = internal.NormalizeEmail(email)
	if !internal.ValidEmail(email) {
		return "", errors.ErrEmailMalformed
	}
	return email, nil
}

// writeError writes err as an API error response. Errors of the domain
// packages are translated to their API counterpart and anything else is
// an internal server error.
func writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)
	apiErr.Write(w)
}

func toAPIError(err error) errors.Error {
	var apiErr errors.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, taking.ErrSurveyNotFound):
		return errors.ErrSurveyNotFound
	case errors.Is(err, db.ErrUnknownPackage):
		return errors.ErrUnknownPackage.WithErr(err)
	case errors.Is(err, db.ErrInvalidData):
		return errors.ErrInvalidData.WithErr(err)
	case errors.Is(err, surveys.ErrDuplicateEmail), errors.Is(err, users.ErrDuplicateEmail):
		return errors.ErrDuplicateEmail
	case errors.Is(err, surveys.ErrCompanyNotFound):
		return errors.ErrCompanyNotFound
	case errors.Is(err, surveys.ErrPackageRequired):
		return errors.ErrNoPackage
	case errors.Is(err, surveys.ErrTooManyQuestions), errors.Is(err, builder.ErrTooManyQuestions):
		return errors.ErrTooManyQuestions.WithErr(err)
	case errors.Is(err, builder.ErrEmptySurvey), errors.Is(err, builder.ErrEmptyQuestion),
		errors.Is(err, builder.ErrMinOptions), errors.Is(err, builder.ErrNoOptions),
		errors.Is(err, builder.ErrInvalidIndex), errors.Is(err, builder.ErrQuestionNotFound):
		return errors.ErrInvalidSurvey.WithErr(err)
	case errors.Is(err, auth.ErrPasswordTooShort):
		return errors.ErrPasswordTooShort
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errors.ErrInvalidCredentials
	case errors.Is(err, taking.ErrSurveyInactive), errors.Is(err, taking.ErrSurveyExpired),
		errors.Is(err, taking.ErrNoQuestions):
		return errors.ErrSurveyUnavailable.WithErr(err)
	case errors.Is(err, taking.ErrAnswerRequired):
		return errors.ErrAnswerRequired
	case errors.Is(err, taking.ErrRespondentRequired):
		return errors.ErrRespondentRequired
	case errors.Is(err, taking.ErrNotAllowed):
		return errors.ErrInvalidTakingAction.WithErr(err)
	case errors.Is(err, taking.ErrUnknownQuestion):
		return errors.ErrUnknownQuestion
	}
	log.Warnw("unexpected API error", "error", err)
	return errors.ErrGenericInternalServerError.WithErr(err)
}
