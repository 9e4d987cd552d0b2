package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/surveypro/saas-backend/errors"
	"go.vocdoni.io/dvote/log"
)

type bodyKey struct{}

// FieldError describes why a field of the request body was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the list of rejected fields of a request body.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, err := range fe {
		parts = append(parts, err.Field+": "+err.Message)
	}
	return strings.Join(parts, ", ")
}

// Body decodes the JSON body of POST, PUT and PATCH requests into a new
// instance of the type of model and validates it. The instance is stored in
// the request context, read it back with ValidatedBody. Requests without a
// JSON content type are passed through untouched.
func (v *Validator) Body(model any) func(http.Handler) http.Handler {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				next.ServeHTTP(w, r)
				return
			}
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}
			// handlers may still read the raw body
			r.Body = io.NopCloser(bytes.NewReader(raw))

			instance := reflect.New(modelType).Interface()
			if err := json.Unmarshal(raw, instance); err != nil {
				errors.ErrMalformedBody.Withf("could not decode %s", modelType.Name()).Write(w)
				return
			}
			if err := v.Validate(instance); err != nil {
				fields := fieldErrors(err)
				log.Debugw("request body rejected", "model", modelType.Name(), "errors", fields.Error())
				errors.ErrMalformedBody.WithErr(fields).Write(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, instance)))
		})
	}
}

// ValidatedBody returns the body stored by the Body middleware, if it was
// decoded into a T.
func ValidatedBody[T any](ctx context.Context) (*T, bool) {
	body, ok := ctx.Value(bodyKey{}).(*T)
	return body, ok
}

func fieldErrors(err error) FieldErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Message: err.Error()}}
	}
	fields := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email"
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		unit := "characters"
		if fe.Kind() == reflect.Slice {
			unit = "items"
		}
		return fmt.Sprintf("needs %s %s %s", bound, fe.Param(), unit)
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "packagetier":
		return "is not a package of the catalog"
	case "questiontype":
		return "is not a question type"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
