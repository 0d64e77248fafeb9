// Package sqlerr turns database errors into API errors.
//
// Constraint violations become 400/409 responses with stable codes such as
// PRODUCT_ALREADY_EXISTS, missing rows become 404s and everything else is
// hidden behind a generic 500.
package sqlerr
