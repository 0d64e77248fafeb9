package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kelvin262292/storefront/internal/config"
	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{Config: config.Defaults(), Logger: &log}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "application error passes through",
			err:    errs.NewConflictError("Taken", errs.Code("PRODUCT_ALREADY_EXISTS"), nil),
			status: http.StatusConflict,
			code:   "PRODUCT_ALREADY_EXISTS",
		},
		{
			name:   "record not found",
			err:    gorm.ErrRecordNotFound,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "duplicate key",
			err:    gorm.ErrDuplicatedKey,
			status: http.StatusConflict,
			code:   "RECORD_ALREADY_EXISTS",
		},
		{
			name:   "unknown error is hidden",
			err:    errors.New("dial tcp: connection refused"),
			status: http.StatusInternalServerError,
			code:   "INTERNAL_SERVER_ERROR",
		},
		{
			name:   "echo error keeps its status",
			err:    echo.NewHTTPError(http.StatusMethodNotAllowed),
			status: http.StatusMethodNotAllowed,
			code:   "METHOD_NOT_ALLOWED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(newTestServer())
			e.GET("/", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestGlobalErrorHandler_UnknownRoute(t *testing.T) {
	e := newEcho(newTestServer())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeError(t, rec).Message)
}

func TestRequireAdmin(t *testing.T) {
	s := newTestServer()
	auth := NewAuthMiddleware(s)

	run := func(p *model.Principal) *httptest.ResponseRecorder {
		e := newEcho(s)
		e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if p != nil {
					c.Set(PrincipalKey, *p)
				}
				return next(c)
			}
		}, auth.RequireAdmin)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, run(nil).Code)
	assert.Equal(t, http.StatusForbidden, run(&model.Principal{ExternalID: "u1", Role: "org:member"}).Code)
	assert.Equal(t, http.StatusOK, run(&model.Principal{ExternalID: "u2", Role: "org:admin", IsAdmin: true}).Code)
}

func TestRateLimit_DeniesAfterBurst(t *testing.T) {
	s := newTestServer()
	s.Config.RateLimit.Burst = 2
	s.Config.RateLimit.RequestsPerMinute = 0.001

	e := newEcho(s)
	limit := NewRateLimitMiddleware(s).Limit("reviews")
	e.POST("/", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, limit)

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.2"))
}

func TestCartTokenHeaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CartTokenHeader, "  tok  ")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.Equal(t, "tok", GetCartToken(c))

	SetCartToken(c, "")
	assert.Empty(t, rec.Header().Get(CartTokenHeader))
	SetCartToken(c, "next")
	assert.Equal(t, "next", rec.Header().Get(CartTokenHeader))
}

func TestGetPrincipal(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := GetPrincipal(c)
	assert.False(t, ok)

	c.Set(PrincipalKey, model.Principal{ExternalID: "user_1"})
	p, ok := GetPrincipal(c)
	assert.True(t, ok)
	assert.Equal(t, "user_1", p.ExternalID)
}
