// Package middleware holds the global and route-level Echo middleware:
// request ids, New Relic tracing, request-scoped loggers, Clerk
// authentication, the admin guard, cart tokens, rate limiting and the
// global error handler.
package middleware
