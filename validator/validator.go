// Package validator wraps go-playground/validator with the rules used by the
// survey API request models.
package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("packagetier", validatePackageTier)
	_ = v.RegisterValidation("questiontype", validateQuestionType)
	// decimals are validated as numbers, so gte/lte/gt apply to amounts
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package.
func (v *Validator) Validate(s interface{}) error {
	return v.validator.Struct(s)
}

// validatePackageTier accepts the tiers of the package catalog.
func validatePackageTier(fl validator.FieldLevel) bool {
	// If the field is empty, it's valid (use required tag if it's required)
	if fl.Field().String() == "" {
		return true
	}
	_, err := db.PackageByTier(db.PackageTier(fl.Field().String()))
	return err == nil
}

func validateQuestionType(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" {
		return true
	}
	return db.QuestionType(fl.Field().String()).Valid()
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}
