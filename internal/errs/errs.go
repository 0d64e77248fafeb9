// Package errs defines the error shapes returned to API clients.
//
// Every failure that reaches the HTTP layer is converted into an HTTPError so
// storefront and admin clients can render form messages from one consistent
// JSON structure.
package errs
