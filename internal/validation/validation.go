// Package validation binds request payloads and turns validation failures
// into field-level 400 responses.
//
// Payload types declare rules with validator tags and expose them through
// Validatable. Rules that tags cannot express are reported as
// CustomValidationErrors.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator. Field names in its errors are the
// JSON names clients send.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "query", "param", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
		_ = instance.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return IsValidSlug(fl.Field().String())
		})
	})
	return instance
}

// Struct validates v with the shared validator.
func Struct(v any) error {
	return Validator().Struct(v)
}
