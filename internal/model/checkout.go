package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// CheckoutStep names one page of the checkout form.
type CheckoutStep string

const (
	StepContact  CheckoutStep = "contact"
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
)

// CheckoutSteps is the order in which steps are filled in and validated.
var CheckoutSteps = []CheckoutStep{StepContact, StepShipping, StepPayment}

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingPickup   ShippingMethod = "pickup"
)

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type ContactStep struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	FullName string `json:"fullName" validate:"required,min=2,max=200"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

func (s *ContactStep) Validate() error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.FullName = strings.TrimSpace(s.FullName)
	return validation.Struct(s)
}

// ShippingStep needs an address unless the order is picked up in store.
type ShippingStep struct {
	Method  ShippingMethod `json:"method" validate:"required,oneof=standard express pickup"`
	Address *Address       `json:"address" validate:"required_unless=Method pickup"`
}

func (s *ShippingStep) Validate() error {
	return validation.Struct(s)
}

type PaymentStep struct {
	Method PaymentMethod `json:"method" validate:"required,oneof=card cod bank_transfer"`
	Notes  string        `json:"notes" validate:"max=500"`
}

func (s *PaymentStep) Validate() error {
	return validation.Struct(s)
}

// CheckoutRequest is the final submission carrying every step.
type CheckoutRequest struct {
	Contact  ContactStep  `json:"contact"`
	Shipping ShippingStep `json:"shipping"`
	Payment  PaymentStep  `json:"payment"`
}

// Validate checks the steps in order and reports only the first failing
// step, with its field names prefixed by the step name.
func (r *CheckoutRequest) Validate() error {
	steps := []struct {
		name    CheckoutStep
		payload validation.Validatable
	}{
		{StepContact, &r.Contact},
		{StepShipping, &r.Shipping},
		{StepPayment, &r.Payment},
	}

	for _, step := range steps {
		if msg, fieldErrors := validation.ValidateStruct(step.payload); fieldErrors != nil {
			return &StepError{Step: step.name, Message: msg, Fields: fieldErrors}
		}
	}
	return nil
}

// StepError is a failed checkout step.
type StepError struct {
	Step    CheckoutStep
	Message string
	Fields  []errs.FieldError
}

func (e *StepError) Error() string {
	return fmt.Sprintf("checkout step %s: %s", e.Step, e.Message)
}

// HTTPError renders e as a 400 with prefixed fields.
func (e *StepError) HTTPError() *errs.HTTPError {
	code := "CHECKOUT_" + strings.ToUpper(string(e.Step)) + "_INVALID"
	return errs.NewBadRequestError(
		fmt.Sprintf("Please review the %s details", e.Step),
		true,
		&code,
		validation.PrefixFieldErrors(string(e.Step), e.Fields),
		nil,
	)
}

// ValidateStepRequest validates a single step. The body is the bare step
// payload; which type it decodes into depends on the path.
type ValidateStepRequest struct {
	Step CheckoutStep `json:"-" param:"step" validate:"required,oneof=contact shipping payment"`

	Contact  *ContactStep  `json:"-"`
	Shipping *ShippingStep `json:"-"`
	Payment  *PaymentStep  `json:"-"`

	raw json.RawMessage
}

// UnmarshalJSON defers decoding until the step is known.
func (r *ValidateStepRequest) UnmarshalJSON(b []byte) error {
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r *ValidateStepRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var payload validation.Validatable
	switch r.Step {
	case StepContact:
		r.Contact = &ContactStep{}
		payload = r.Contact
	case StepShipping:
		r.Shipping = &ShippingStep{}
		payload = r.Shipping
	case StepPayment:
		r.Payment = &PaymentStep{}
		payload = r.Payment
	}

	if len(r.raw) > 0 {
		if err := json.Unmarshal(r.raw, payload); err != nil {
			return &StepError{
				Step:    r.Step,
				Message: "Malformed step payload",
				Fields:  []errs.FieldError{},
			}
		}
	}

	if msg, fieldErrors := validation.ValidateStruct(payload); fieldErrors != nil {
		return &StepError{Step: r.Step, Message: msg, Fields: fieldErrors}
	}
	return nil
}

// ShippingQuote is the fee for a shipping method given the cart subtotal.
type ShippingQuote struct {
	Method      ShippingMethod  `json:"method"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Fee         decimal.Decimal `json:"fee"`
	Total       decimal.Decimal `json:"total"`
	FreeShipped bool            `json:"freeShipping"`
	Currency    string          `json:"currency"`
}

// StepResult answers a step validation. Quote is only present for the
// shipping step.
type StepResult struct {
	Step  CheckoutStep   `json:"step"`
	Valid bool           `json:"valid"`
	Next  *CheckoutStep  `json:"next"`
	Quote *ShippingQuote `json:"quote,omitempty"`
}

// NextStep returns the step after s, or nil for the last one.
func NextStep(s CheckoutStep) *CheckoutStep {
	for i, step := range CheckoutSteps {
		if step == s && i+1 < len(CheckoutSteps) {
			next := CheckoutSteps[i+1]
			return &next
		}
	}
	return nil
}

// ShippingFee computes the fee for method. Pickup is free; other methods
// are free when the subtotal reaches freeThreshold. A zero threshold
// disables free shipping.
func ShippingFee(method ShippingMethod, subtotal, standard, express, freeThreshold decimal.Decimal) decimal.Decimal {
	if method == ShippingPickup {
		return decimal.Zero
	}
	if freeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(freeThreshold) {
		return decimal.Zero
	}
	if method == ShippingExpress {
		return express
	}
	return standard
}
