package service

import (
	"net/http"
	"testing"

	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutReq(method model.ShippingMethod) *model.CheckoutRequest {
	req := &model.CheckoutRequest{
		Contact:  model.ContactStep{Email: "ada@example.com", FullName: "Ada Lovelace"},
		Shipping: model.ShippingStep{Method: method},
		Payment:  model.PaymentStep{Method: model.PaymentCard},
	}
	if method != model.ShippingPickup {
		req.Shipping.Address = &model.Address{Line1: "1 Analytical Way", City: "London", PostalCode: "N1 9GU", Country: "GB"}
	}
	return req
}

// fillCart signs p in and puts qty units of product into their cart.
func (e *env) fillCart(t *testing.T, p model.Principal, productID uint, qty int) *model.User {
	t.Helper()
	u := e.user(t, p)
	_, err := e.svc.Carts.AddItem(e.ctx, CartOwner{UserID: &u.ID}, &model.AddCartItemRequest{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
	return u
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), "", checkoutReq(model.ShippingStandard))
	he := httpErr(t, err, http.StatusBadRequest)
	assert.Equal(t, "CART_EMPTY", he.Code)
}

func TestPlaceOrder_Success(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Teapot", "24.50", 5)
	u := e.fillCart(t, shopper("buyer"), p.ID, 2)

	order, err := e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), "", checkoutReq(model.ShippingStandard))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, u.ID, order.UserID)
	assert.Equal(t, "49.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", order.ShippingFee.StringFixed(2))
	assert.Equal(t, "54.00", order.Total.StringFixed(2))
	assert.Equal(t, "London", order.ShippingAddress.City)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Teapot", order.Items[0].ProductName)
	assert.Equal(t, "24.50", order.Items[0].UnitPrice.StringFixed(2))

	assert.Equal(t, 3, e.stock(t, p.ID))

	cart, err := e.svc.Carts.Get(e.ctx, CartOwner{UserID: &u.ID})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	assert.Equal(t, []string{job.TaskOrderConfirmation}, e.tasks.types())

	stored, err := e.repos.Orders.GetByNumber(e.ctx, order.Number)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
}

func TestPlaceOrder_ShippingFees(t *testing.T) {
	tests := []struct {
		name   string
		method model.ShippingMethod
		price  string
		fee    string
	}{
		{name: "standard below threshold", method: model.ShippingStandard, price: "99.99", fee: "5.00"},
		{name: "standard at threshold", method: model.ShippingStandard, price: "100.00", fee: "0.00"},
		{name: "express below threshold", method: model.ShippingExpress, price: "50.00", fee: "15.00"},
		{name: "express above threshold", method: model.ShippingExpress, price: "150.00", fee: "0.00"},
		{name: "pickup", method: model.ShippingPickup, price: "10.00", fee: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			p := e.product(t, "Item", tt.price, 1)
			e.fillCart(t, shopper("buyer"), p.ID, 1)

			order, err := e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), "", checkoutReq(tt.method))
			require.NoError(t, err)
			assert.Equal(t, tt.fee, order.ShippingFee.StringFixed(2))
			assert.True(t, order.Total.Equal(order.Subtotal.Add(order.ShippingFee)))
			if tt.method == model.ShippingPickup {
				assert.Empty(t, order.ShippingAddress.Line1)
			}
		})
	}
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	e := newEnv(t)
	plenty := e.product(t, "Plenty", "5", 10)
	scarce := e.product(t, "Scarce", "5", 3)

	u := e.fillCart(t, shopper("buyer"), plenty.ID, 2)
	_, err := e.svc.Carts.AddItem(e.ctx, CartOwner{UserID: &u.ID}, &model.AddCartItemRequest{ProductID: scarce.ID, Quantity: 3})
	require.NoError(t, err)

	// Someone else buys the last units in between.
	ok, err := e.repos.Products.DecrementStock(e.ctx, scarce.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), "", checkoutReq(model.ShippingExpress))
	he := httpErr(t, err, http.StatusConflict)
	assert.Equal(t, "INSUFFICIENT_STOCK", he.Code)

	assert.Equal(t, 10, e.stock(t, plenty.ID))
	assert.Equal(t, 1, e.stock(t, scarce.ID))

	cart, err := e.svc.Carts.Get(e.ctx, CartOwner{UserID: &u.ID})
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)

	orders, err := e.svc.Orders.List(e.ctx, shopper("buyer"), &model.ListOrdersQuery{})
	require.NoError(t, err)
	assert.Zero(t, orders.Total)
	assert.Empty(t, e.tasks.types())
}

func TestPlaceOrder_MergesGuestCart(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Mug", "8", 4)

	guest, err := e.svc.Carts.AddItem(e.ctx, CartOwner{}, &model.AddCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	order, err := e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), guest.Token, checkoutReq(model.ShippingStandard))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 2, e.stock(t, p.ID))
}

func TestValidateStep_ShippingQuote(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Vase", "30", 5)
	view, err := e.svc.Carts.AddItem(e.ctx, CartOwner{}, &model.AddCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	req := &model.ValidateStepRequest{
		Step:     model.StepShipping,
		Shipping: &model.ShippingStep{Method: model.ShippingExpress},
	}
	res, err := e.svc.Checkout.ValidateStep(e.ctx, CartOwner{Token: view.Token}, req)
	require.NoError(t, err)

	assert.True(t, res.Valid)
	require.NotNil(t, res.Next)
	assert.Equal(t, model.StepPayment, *res.Next)
	require.NotNil(t, res.Quote)
	assert.Equal(t, "60.00", res.Quote.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", res.Quote.Fee.StringFixed(2))
	assert.Equal(t, "75.00", res.Quote.Total.StringFixed(2))
	assert.False(t, res.Quote.FreeShipped)

	res, err = e.svc.Checkout.ValidateStep(e.ctx, CartOwner{}, &model.ValidateStepRequest{Step: model.StepPayment})
	require.NoError(t, err)
	assert.Nil(t, res.Next)
	assert.Nil(t, res.Quote)
}

func TestQuote_FreeShipping(t *testing.T) {
	e := newEnv(t)
	q := e.svc.Checkout.Quote(model.ShippingStandard, decimal.RequireFromString("120"))
	assert.True(t, q.FreeShipped)
	assert.Equal(t, "120.00", q.Total.StringFixed(2))
	assert.Equal(t, "USD", q.Currency)
}

func TestPlaceOrder_RefreshesCachedStock(t *testing.T) {
	e := newEnv(t)
	cache := newMemCache()
	e.svc.Products.cache = cache

	p := e.product(t, "Teapot", "24.50", 5)
	page, err := e.svc.Products.Get(e.ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Stock)
	require.True(t, cache.has(productCacheKey(p.Slug)))

	e.fillCart(t, shopper("buyer"), p.ID, 2)
	order, err := e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), "", checkoutReq(model.ShippingStandard))
	require.NoError(t, err)
	assert.False(t, cache.has(productCacheKey(p.Slug)))

	page, err = e.svc.Products.Get(e.ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Stock)

	_, err = e.svc.Orders.Cancel(e.ctx, shopper("buyer"), order.Number)
	require.NoError(t, err)

	page, err = e.svc.Products.Get(e.ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Stock)
}

func TestUpdateStatus_CancelRefreshesCachedStock(t *testing.T) {
	e := newEnv(t)
	cache := newMemCache()
	e.svc.Products.cache = cache

	p := e.product(t, "Kettle", "30.00", 4)
	e.fillCart(t, shopper("buyer"), p.ID, 1)
	order, err := e.svc.Checkout.PlaceOrder(e.ctx, shopper("buyer"), "", checkoutReq(model.ShippingStandard))
	require.NoError(t, err)

	page, err := e.svc.Products.Get(e.ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Stock)

	_, err = e.svc.Orders.UpdateStatus(e.ctx, &model.UpdateOrderStatusRequest{Number: order.Number, Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	assert.False(t, cache.has(productCacheKey(p.Slug)))

	page, err = e.svc.Products.Get(e.ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Stock)
}
