package handler

import (
	"time"

	"github.com/kelvin262292/storefront/internal/middleware"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler carries the shared server dependencies and is embedded by every
// concrete handler.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. Req arrives bound and validated.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint without a response body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// Request is satisfied by a pointer to a request struct T.
type Request[T any] interface {
	*T
	validation.Validatable
}

// ResponseHandler writes a successful result and names the operation for
// logs.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, _ any) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

// phaseTrace records per-phase outcome and timing on the request's New
// Relic transaction. It is a no-op without one.
type phaseTrace struct {
	txn *newrelic.Transaction
}

func (p phaseTrace) record(phase string, d time.Duration, err error) {
	if p.txn == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
		p.txn.NoticeError(nrpkgerrors.Wrap(err))
	}
	p.txn.AddAttribute(phase+".status", status)
	p.txn.AddAttribute(phase+".duration_ms", d.Milliseconds())
}

// handleRequest binds and validates req, runs handler and writes the
// result. Validation failures are logged as warnings, handler failures as
// errors; the global error handler renders both.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	trace := phaseTrace{txn: newrelic.FromContext(c.Request().Context())}
	if trace.txn != nil {
		trace.txn.AddAttribute("handler.name", c.Path())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Logger()

	err := validation.BindAndValidate(c, req)
	validationDuration := time.Since(start)
	trace.record("validation", validationDuration, err)
	if err != nil {
		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")
		return err
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)
	trace.record("handler", handlerDuration, err)
	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")
		return err
	}

	logger.Info().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed endpoint into an echo.HandlerFunc. A fresh request
// value is allocated per call.
//
//	g.POST("/brands", handler.Handle(h, h.CreateBrand, http.StatusCreated))
func Handle[T any, Req Request[T], Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleNoContent is Handle for endpoints that answer without a body.
func HandleNoContent[T any, Req Request[T]](
	h Handler,
	handler HandlerFuncNoContent[Req],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}

// principal returns the authenticated caller. Routes behind RequireAuth
// always have one.
func principal(c echo.Context) model.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}
