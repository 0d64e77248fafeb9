// Package handler is the HTTP layer. Each endpoint is a typed function
// wrapped by Handle, which binds and validates the request before calling
// into the service layer.
package handler
