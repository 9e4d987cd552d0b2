// Package errors provides the API error type and the catalog of errors the
// survey service returns.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// Redirect is the error data telling the client which page to open
// instead.
type Redirect struct {
	To string `json:"redirect"`
}

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the client's fault and return
// HTTP Status 400, 401, 402, 403, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault and return HTTP Status 500
// or 503.
//
// NEVER change any of the current error codes, only append new errors after
// the current last 4XXXX or 5XXXX. Gaps are retired codes, don't reuse them.
var (
	// Authentication errors (401, 403)
	ErrUnauthorized       = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info", Data: Redirect{To: "/login"}}
	ErrUserUnauthorized   = Error{Code: 40002, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("survey taker authentication required"), LogLevel: "info", Data: Redirect{To: "/user-login"}}
	ErrInvalidCredentials = Error{Code: 40003, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("invalid email or password"), LogLevel: "info"}
	ErrNoPackage          = Error{Code: 40004, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("a survey package is required"), LogLevel: "info", Data: Redirect{To: "/pricing"}}
	ErrNotSurveyOwner     = Error{Code: 40005, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("survey belongs to another company"), LogLevel: "info"}

	// Validation errors (400)
	ErrMalformedBody       = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMalformedURLParam   = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrInvalidData         = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid data provided")}
	ErrEmailMalformed      = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid email format")}
	ErrPasswordTooShort    = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("password is too short")}
	ErrUnknownPackage      = Error{Code: 40015, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("unknown package tier")}
	ErrTooManyQuestions    = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("question limit of the package exceeded")}
	ErrInvalidSurvey       = Error{Code: 40017, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid survey")}
	ErrAnswerRequired      = Error{Code: 40018, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("an answer is required to continue"), LogLevel: "info"}
	ErrRespondentRequired  = Error{Code: 40019, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("respondent name and email are required"), LogLevel: "info"}
	ErrInvalidTakingAction = Error{Code: 40020, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("action not allowed at this point of the survey")}
	ErrUnknownQuestion     = Error{Code: 40021, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("question not found in survey")}

	// Not found errors (404)
	ErrSurveyNotFound        = Error{Code: 40030, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("survey not found")}
	ErrCompanyNotFound       = Error{Code: 40031, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("company not found")}
	ErrUserNotFound          = Error{Code: 40032, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("user not found")}
	ErrTakingSessionNotFound = Error{Code: 40033, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("survey session not found or expired")}
	ErrSurveyUnavailable     = Error{Code: 40034, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("survey is not available")}

	// Conflict errors (409)
	ErrDuplicateEmail = Error{Code: 40040, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("email address already registered"), LogLevel: "info"}

	// Payment errors (402)
	ErrPaymentFailed = Error{Code: 40050, HTTPstatus: http.StatusPaymentRequired, Err: fmt.Errorf("payment failed")}

	// Server errors (500, 503)
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("failed to marshal server response")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrStripeError                = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("stripe error")}
	ErrPaymentUnavailable         = Error{Code: 50004, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("payment processor not available")}
)
