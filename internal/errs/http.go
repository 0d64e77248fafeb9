package errs

import "strings"

// FieldError is a single field-level message, typically rendered next to a
// form input in the storefront or admin UI.
//
//	{ "field": "shipping.address.city", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType names a follow-up the client is expected to perform.
type ActionType string

const (
	// ActionTypeRedirect asks the client to navigate to Action.Value.
	ActionTypeRedirect ActionType = "redirect"

	// ActionTypeRefreshCart asks the client to reload its cart, used when the
	// cart changed underneath a checkout attempt.
	ActionTypeRefreshCart ActionType = "refresh_cart"
)

// Action is an optional instruction attached to an error response.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type every handler ultimately returns.
//
// Fields:
//   - Code: stable machine-readable code (e.g. "PRODUCT_ALREADY_EXISTS").
//   - Message: human readable text.
//   - Status: HTTP status code.
//   - Override: when true, clients may show Message verbatim.
//   - Errors: field-level validation errors.
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`

	Action *Action `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError. The comparison is by type only
// so errors.Is(err, &HTTPError{}) answers "is this an API error at all".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying a different message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// WithAction returns a copy of e carrying the given client action.
func (e *HTTPError) WithAction(action *Action) *HTTPError {
	clone := e.WithMessage(e.Message)
	clone.Action = action
	return clone
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
