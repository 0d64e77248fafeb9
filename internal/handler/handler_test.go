package handler

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/middleware"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/kelvin262292/storefront/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	e     *echo.Echo
	s     *server.Server
	repos *repository.Repositories
	h     *Handlers
	seq   int
}

// signedInAs stands in for Clerk: it trusts the X-Test-User header.
func signedInAs(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Request().Header.Get("X-Test-User"); id != "" {
			role := c.Request().Header.Get("X-Test-Role")
			c.Set(middleware.PrincipalKey, model.Principal{ExternalID: id, Role: role, IsAdmin: role == "org:admin"})
			c.Set(middleware.UserIDKey, id)
		}
		return next(c)
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	s := testutil.NewTestServer(t)
	repos := repository.NewRepositories(s)
	services, err := service.NewService(s, repos)
	require.NoError(t, err)

	app := &testApp{
		e:     echo.New(),
		s:     s,
		repos: repos,
		h:     NewHandlers(s, services),
	}
	app.e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	app.e.Use(signedInAs)

	h := app.h
	g := app.e.Group("/api/v1")
	g.GET("/products", Handle(h.Products.Handler, h.Products.List, http.StatusOK))
	g.GET("/products/:slug", Handle(h.Products.Handler, h.Products.Get, http.StatusOK))
	g.GET("/products/:slug/model", Handle(h.Models.Handler, h.Models.Viewer, http.StatusOK))
	g.GET("/cart", Handle(h.Carts.Handler, h.Carts.Get, http.StatusOK))
	g.POST("/cart/items", Handle(h.Carts.Handler, h.Carts.AddItem, http.StatusOK))
	g.DELETE("/cart/items/:productId", Handle(h.Carts.Handler, h.Carts.RemoveItem, http.StatusOK))
	g.POST("/checkout/steps/:step", Handle(h.Checkout.Handler, h.Checkout.ValidateStep, http.StatusOK))
	g.POST("/checkout", Handle(h.Checkout.Handler, h.Checkout.PlaceOrder, http.StatusCreated))
	g.GET("/orders/:number", Handle(h.Orders.Handler, h.Orders.Get, http.StatusOK))
	g.GET("/admin/products", Handle(h.Products.Handler, h.Products.AdminList, http.StatusOK))
	g.DELETE("/admin/brands/:id", HandleNoContent(h.Catalog.Handler, h.Catalog.DeleteBrand, http.StatusNoContent))
	g.POST("/admin/products/:id/model/upload", Handle(h.Models.Handler, h.Models.Upload, http.StatusCreated))
	app.e.GET("/status", h.Health.CheckHealth)

	return app
}

func (a *testApp) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) product(t *testing.T, price string, stock int, active bool) *model.Product {
	t.Helper()
	a.seq++
	p := &model.Product{
		Name:     fmt.Sprintf("Product %d", a.seq),
		Slug:     fmt.Sprintf("product-%d", a.seq),
		SKU:      fmt.Sprintf("SKU-%d", a.seq),
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: active,
	}
	require.NoError(t, a.repos.Products.Create(context.Background(), p))
	return p
}

// user stores a local account so no identity provider lookup is needed.
func (a *testApp) user(t *testing.T, externalID string) *model.User {
	t.Helper()
	u := &model.User{ExternalID: externalID, Email: externalID + "@example.com", FirstName: "Grace"}
	require.NoError(t, a.repos.Users.Create(context.Background(), u))
	return u
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandle_BindAndValidationErrors(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": 1, "quantity": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errs.HTTPError](t, rec)
	assert.True(t, body.Override)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "quantity", body.Errors[0].Field)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/products?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/products?minPrice=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode[errs.HTTPError](t, rec)
	assert.True(t, body.Override)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, errs.FieldError{Field: "minPrice", Error: "must be a decimal number"}, body.Errors[0])
}

func TestProducts_PublicListHidesInactive(t *testing.T) {
	app := newTestApp(t)
	visible := app.product(t, "10", 3, true)
	hidden := app.product(t, "12", 3, false)

	rec := app.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[model.PaginatedResponse[model.Product]](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, visible.Slug, page.Data[0].Slug)

	rec = app.do(t, http.MethodGet, "/api/v1/products/"+hidden.Slug, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/admin/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[model.PaginatedResponse[model.Product]](t, rec).Total)
}

func TestProducts_PageOutOfRange(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 3; i++ {
		app.product(t, "10", 3, true)
	}

	rec := app.do(t, http.MethodGet, "/api/v1/products?page=9223372036854775807", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode[errs.HTTPError](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Contains(t, body.Errors[0].Field, "page")

	rec = app.do(t, http.MethodGet, "/api/v1/products?page=100000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[model.PaginatedResponse[model.Product]](t, rec)
	assert.Equal(t, int64(3), page.Total)
	assert.Empty(t, page.Data)
}

func TestCart_GuestTokenHeaderRoundTrip(t *testing.T) {
	app := newTestApp(t)
	p := app.product(t, "7.50", 10, true)

	rec := app.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := rec.Header().Get(middleware.CartTokenHeader)
	require.NotEmpty(t, token)

	rec = app.do(t, http.MethodGet, "/api/v1/cart", nil, middleware.CartTokenHeader, token)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[model.CartView](t, rec)
	assert.Equal(t, 2, view.ItemCount)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, token, rec.Header().Get(middleware.CartTokenHeader))

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%d", p.ID), nil, middleware.CartTokenHeader, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[model.CartView](t, rec).Lines)
}

func TestCheckout_ValidateStepUsesPathStep(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/checkout/steps/contact", map[string]any{"email": "not-an-email", "fullName": "Al"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errs.HTTPError](t, rec)
	assert.Equal(t, "CHECKOUT_CONTACT_INVALID", body.Code)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "contact.email", body.Errors[0].Field)

	rec = app.do(t, http.MethodPost, "/api/v1/checkout/steps/contact", map[string]any{"email": "al@example.com", "fullName": "Al Turing"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[model.StepResult](t, rec)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Next)
	assert.Equal(t, model.StepShipping, *result.Next)

	rec = app.do(t, http.MethodPost, "/api/v1/checkout/steps/billing", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_PlaceOrderAndReadBack(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "user_buyer")
	app.user(t, "user_other")
	p := app.product(t, "30", 5, true)

	asBuyer := []string{"X-Test-User", "user_buyer"}
	rec := app.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": p.ID, "quantity": 2}, asBuyer...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get(middleware.CartTokenHeader), "signed-in carts have no token")

	checkout := map[string]any{
		"contact":  map[string]any{"email": "buyer@example.com", "fullName": "Grace Hopper"},
		"shipping": map[string]any{"method": "pickup"},
		"payment":  map[string]any{"method": "cod"},
	}
	rec = app.do(t, http.MethodPost, "/api/v1/checkout", checkout, asBuyer...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[model.Order](t, rec)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	require.NotEmpty(t, order.Number)

	rec = app.do(t, http.MethodGet, "/api/v1/orders/"+order.Number, nil, asBuyer...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/orders/"+order.Number, nil, "X-Test-User", "user_other")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/checkout", checkout, asBuyer...)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CART_EMPTY", decode[errs.HTTPError](t, rec).Code)
}

func TestCheckout_InvalidStepIsReportedFirst(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "user_buyer")

	rec := app.do(t, http.MethodPost, "/api/v1/checkout", map[string]any{
		"contact":  map[string]any{"email": "buyer@example.com", "fullName": "Grace Hopper"},
		"shipping": map[string]any{"method": "standard"},
		"payment":  map[string]any{"method": "cod"},
	}, "X-Test-User", "user_buyer")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CHECKOUT_SHIPPING_INVALID", decode[errs.HTTPError](t, rec).Code)
}

func TestHandleNoContent_MapsNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodDelete, "/api/v1/admin/brands/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodDelete, "/api/v1/admin/brands/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errs.HTTPError](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "id", body.Errors[0].Field)
}

func glb() []byte {
	var buf bytes.Buffer
	buf.WriteString("glTF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(28))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8))
	buf.WriteString("JSON")
	buf.WriteString(`{}      `)
	return buf.Bytes()
}

func multipartUpload(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "chair.glb")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestModelUpload_Multipart(t *testing.T) {
	app := newTestApp(t)
	p := app.product(t, "199", 2, true)
	target := fmt.Sprintf("/api/v1/admin/products/%d/model/upload", p.ID)

	body, contentType := multipartUpload(t, ModelFormField, glb())
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := decode[model.ProductModel](t, rec)
	assert.Equal(t, model.ModelFormatGLB, stored.Format)
	assert.True(t, strings.HasPrefix(stored.AssetURL, app.s.Storage.PublicPrefix()+"/"))

	rec = app.do(t, http.MethodGet, "/api/v1/products/"+p.Slug+"/model", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	viewer := decode[model.ViewerConfig](t, rec)
	assert.Equal(t, stored.AssetURL, viewer.Loader.Src)

	body, contentType = multipartUpload(t, "attachment", glb())
	req = httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec = httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MODEL_FILE_REQUIRED", decode[errs.HTTPError](t, rec).Code)
}

func TestCheckHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.NotContains(t, body.Checks, "redis")
}
