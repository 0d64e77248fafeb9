package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Validatable is implemented by every request payload.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule failure that a struct tag cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors satisfies error so Validate can return it directly.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds the request into payload and validates it.
// payload must be a pointer.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		message := "Invalid request payload"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusUnsupportedMediaType {
				return errs.NewBadRequestError("Unsupported content type", false, nil, nil, nil)
			}
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			}
		}
		if fieldErrors := bindFieldErrors(c, payload); len(fieldErrors) > 0 {
			return errs.NewBadRequestError("Validation failed", true, nil, fieldErrors, nil)
		}
		return errs.NewBadRequestError(message, false, nil, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		var rendered interface{ HTTPError() *errs.HTTPError }
		if errors.As(err, &rendered) {
			return rendered.HTTPError()
		}

		msg, fieldErrors := ExtractValidationErrors(err)
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindFieldErrors finds the path and query fields of payload that echo
// could not convert, by binding each one on its own.
func bindFieldErrors(c echo.Context, payload any) []errs.FieldError {
	t := reflect.TypeOf(payload)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	binder := &echo.DefaultBinder{}
	sources := []struct {
		tag     string
		present func(name string) bool
		bind    func(c echo.Context, i any) error
	}{
		{"param", func(name string) bool { return c.Param(name) != "" }, binder.BindPathParams},
		{"query", func(name string) bool { return c.QueryParams().Has(name) }, binder.BindQueryParams},
	}

	var out []errs.FieldError
	for _, f := range boundFields(t) {
		for _, src := range sources {
			name := strings.SplitN(f.Tag.Get(src.tag), ",", 2)[0]
			if name == "" || name == "-" || !src.present(name) {
				continue
			}
			single := reflect.New(reflect.StructOf([]reflect.StructField{{
				Name: f.Name,
				Type: f.Type,
				Tag:  f.Tag,
			}}))
			if err := src.bind(c, single.Interface()); err != nil {
				out = append(out, errs.FieldError{Field: name, Error: conversionMessage(f.Type)})
			}
		}
	}
	return out
}

// boundFields flattens embedded structs the way echo's binder does.
func boundFields(t reflect.Type) []reflect.StructField {
	var fields []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			fields = append(fields, boundFields(f.Type)...)
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func conversionMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t == decimalType {
		return "must be a decimal number"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be a whole number"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.Bool:
		return "must be true or false"
	default:
		return "is invalid"
	}
}

// ValidateStruct runs v.Validate and flattens any failure into field errors.
// A nil slice means v is valid.
func ValidateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return ExtractValidationErrors(err)
	}
	return "", nil
}

// ExtractValidationErrors converts validator and custom errors into field
// errors. Any other error becomes a single message without fields.
func ExtractValidationErrors(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error(), []errs.FieldError{}
	}

	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fieldPath(e),
			Error: message(e),
		})
	}

	return "Validation failed", fieldErrors
}

// fieldPath drops the root struct name from the namespace, so nested fields
// read "address.city" rather than "ShippingStep.address.city".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if", "required_unless", "required_with":
		return "is required"
	case "min", "gte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid phone number with country code"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "url", "http_url":
		return "must be a valid URL"
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	case "dive":
		return "some items are invalid"
	default:
		if e.Param() != "" {
			return fmt.Sprintf("failed %s=%s", e.Tag(), e.Param())
		}
		return fmt.Sprintf("failed %s", e.Tag())
	}
}

// PrefixFieldErrors prepends prefix to every field, e.g. "shipping.city".
func PrefixFieldErrors(prefix string, fieldErrors []errs.FieldError) []errs.FieldError {
	out := make([]errs.FieldError, len(fieldErrors))
	for i, fe := range fieldErrors {
		out[i] = errs.FieldError{Field: prefix + "." + fe.Field, Error: fe.Error}
	}
	return out
}

var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// IsValidUUID checks the textual UUID format only.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(uuid)
}

// IsValidSlug reports whether s is a lowercase, hyphen separated slug.
func IsValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}
