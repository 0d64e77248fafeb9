package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/lib/utils"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/shopspring/decimal"
)

// CheckoutService validates checkout steps and turns a cart into an order.
type CheckoutService struct {
	server *server.Server
	repos  *repository.Repositories
	users    *UserService
	carts    *CartService
	products *ProductService
	jobs     job.Enqueuer
	now      func() time.Time
}

func NewCheckoutService(
	s *server.Server,
	repos *repository.Repositories,
	users *UserService,
	carts *CartService,
	products *ProductService,
	jobs job.Enqueuer,
) *CheckoutService {
	return &CheckoutService{
		server:   s,
		repos:    repos,
		users:    users,
		carts:    carts,
		products: products,
		jobs:     jobs,
		now:      time.Now,
	}
}

// ValidateStep answers a single step that already passed request
// validation. The shipping step also gets a quote for the current cart.
func (c *CheckoutService) ValidateStep(ctx context.Context, owner CartOwner, req *model.ValidateStepRequest) (*model.StepResult, error) {
	result := &model.StepResult{
		Step:  req.Step,
		Valid: true,
		Next:  model.NextStep(req.Step),
	}

	if req.Step == model.StepShipping && req.Shipping != nil {
		cart, err := c.carts.Get(ctx, owner)
		if err != nil {
			return nil, err
		}
		quote := c.Quote(req.Shipping.Method, cart.Subtotal)
		result.Quote = &quote
	}

	return result, nil
}

// Quote prices shipping for a subtotal with the configured fees.
func (c *CheckoutService) Quote(method model.ShippingMethod, subtotal decimal.Decimal) model.ShippingQuote {
	standard, express, threshold := c.server.Config.Storefront.ShippingFees()
	fee := model.ShippingFee(method, subtotal, standard, express, threshold)

	return model.ShippingQuote{
		Method:      method,
		Subtotal:    model.RoundMoney(subtotal),
		Fee:         model.RoundMoney(fee),
		Total:       model.RoundMoney(subtotal.Add(fee)),
		FreeShipped: fee.IsZero(),
		Currency:    c.server.Config.Storefront.Currency,
	}
}

// PlaceOrder converts the caller's cart into a pending order in one
// transaction: products are locked, stock is taken with a guarded update,
// prices are snapshotted and the cart is emptied. Any failure rolls the
// whole attempt back. The confirmation email is enqueued after commit.
func (c *CheckoutService) PlaceOrder(ctx context.Context, p model.Principal, cartToken string, req *model.CheckoutRequest) (*model.Order, error) {
	user, err := c.users.EnsureUser(ctx, p)
	if err != nil {
		return nil, err
	}

	owner := CartOwner{UserID: &user.ID, Token: cartToken}

	var order *model.Order
	err = c.repos.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := c.carts.load(ctx, owner, false)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return errs.NewBadRequestError("Your cart is empty", true, errs.Code("CART_EMPTY"), nil, nil)
		}

		ids := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := c.repos.Products.GetForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(cart.Items))
		subtotal := decimal.Zero
		for _, item := range cart.Items {
			product, ok := products[item.ProductID]
			if !ok || !product.IsActive {
				name := fmt.Sprintf("Product %d", item.ProductID)
				if ok {
					name = product.Name
				}
				return errs.NewConflictError(fmt.Sprintf("%s is no longer available", name), errs.Code("PRODUCT_UNAVAILABLE"), nil)
			}

			taken, err := c.repos.Products.DecrementStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !taken {
				return errs.NewConflictError(
					fmt.Sprintf("Only %d of %s left in stock", product.Stock, product.Name),
					errs.Code("INSUFFICIENT_STOCK"),
					nil,
				)
			}

			lineTotal := model.RoundMoney(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, model.OrderItem{
				ProductID:   &product.ID,
				ProductName: product.Name,
				ProductSlug: product.Slug,
				SKU:         product.SKU,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
				LineTotal:   lineTotal,
			})
		}

		quote := c.Quote(req.Shipping.Method, subtotal)
		order = &model.Order{
			Number:         utils.NewOrderNumber(c.now()),
			UserID:         user.ID,
			Status:         model.OrderStatusPending,
			Email:          req.Contact.Email,
			FullName:       req.Contact.FullName,
			Phone:          req.Contact.Phone,
			ShippingMethod: req.Shipping.Method,
			PaymentMethod:  req.Payment.Method,
			Notes:          req.Payment.Notes,
			Currency:       quote.Currency,
			Subtotal:       quote.Subtotal,
			ShippingFee:    quote.Fee,
			Total:          quote.Total,
			Items:          items,
		}
		if req.Shipping.Method != model.ShippingPickup && req.Shipping.Address != nil {
			order.ShippingAddress = *req.Shipping.Address
		}

		if err := c.repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		return c.repos.Carts.ClearItems(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	c.server.Logger.Info().
		Str("order_number", order.Number).
		Uint("user_id", user.ID).
		Str("total", order.Total.StringFixed(2)).
		Int("lines", len(order.Items)).
		Msg("order placed")

	c.products.StockChanged(ctx, order.ProductIDs()...)

	task, err := job.NewOrderConfirmationTask(order.Number)
	if err == nil {
		err = c.jobs.Enqueue(ctx, task)
	}
	if err != nil {
		c.server.Logger.Error().Err(err).Str("order_number", order.Number).Msg("failed to enqueue order confirmation")
	}

	return order, nil
}
