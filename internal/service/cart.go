package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/lib/utils"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// CartOwner identifies whose cart a request addresses: a signed-in user,
// a guest token, or both right after sign-in.
type CartOwner struct {
	UserID *uint
	Token  string
}

type CartService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewCartService(s *server.Server, repos *repository.Repositories) *CartService {
	return &CartService{server: s, repos: repos}
}

// Get returns the priced cart. A caller without a cart gets an empty one
// and nothing is created.
func (c *CartService) Get(ctx context.Context, owner CartOwner) (*model.CartView, error) {
	cart, err := c.load(ctx, owner, false)
	if err != nil {
		return nil, err
	}
	return c.view(cart), nil
}

// AddItem adds qty units of a product, merging with an existing line.
func (c *CartService) AddItem(ctx context.Context, owner CartOwner, req *model.AddCartItemRequest) (*model.CartView, error) {
	return c.mutate(ctx, owner, func(ctx context.Context, cart *model.Cart) error {
		qty := req.Quantity
		if item := findItem(cart, req.ProductID); item != nil {
			qty += item.Quantity
		}
		return c.setQuantity(ctx, cart, req.ProductID, qty)
	})
}

// UpdateItem sets a line's quantity; zero removes the line.
func (c *CartService) UpdateItem(ctx context.Context, owner CartOwner, req *model.UpdateCartItemRequest) (*model.CartView, error) {
	return c.mutate(ctx, owner, func(ctx context.Context, cart *model.Cart) error {
		if req.Quantity == 0 {
			_, err := c.repos.Carts.DeleteItem(ctx, cart.ID, req.ProductID)
			return err
		}
		return c.setQuantity(ctx, cart, req.ProductID, req.Quantity)
	})
}

func (c *CartService) RemoveItem(ctx context.Context, owner CartOwner, productID uint) (*model.CartView, error) {
	return c.mutate(ctx, owner, func(ctx context.Context, cart *model.Cart) error {
		removed, err := c.repos.Carts.DeleteItem(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		if !removed {
			return errs.NewNotFoundError("This product is not in your cart", true, errs.Code("CART_ITEM_NOT_FOUND"))
		}
		return nil
	})
}

func (c *CartService) Clear(ctx context.Context, owner CartOwner) (*model.CartView, error) {
	return c.mutate(ctx, owner, func(ctx context.Context, cart *model.Cart) error {
		return c.repos.Carts.ClearItems(ctx, cart.ID)
	})
}

// CleanupIdle deletes guest carts untouched for idleFor.
func (c *CartService) CleanupIdle(ctx context.Context, idleFor time.Duration) (int64, error) {
	if idleFor <= 0 {
		idleFor = c.server.Config.Storefront.GuestCartTTL
	}

	n, err := c.repos.Carts.DeleteIdleGuestCarts(ctx, time.Now().Add(-idleFor))
	if err != nil {
		return 0, err
	}

	c.server.Logger.Info().Int64("deleted", n).Dur("idle_for", idleFor).Msg("guest carts cleaned up")
	return n, nil
}

// mutate runs fn on the owner's cart, creating it if needed, and returns
// the updated view.
func (c *CartService) mutate(ctx context.Context, owner CartOwner, fn func(ctx context.Context, cart *model.Cart) error) (*model.CartView, error) {
	var cart *model.Cart
	err := c.repos.WithinTx(ctx, func(ctx context.Context) error {
		current, err := c.load(ctx, owner, true)
		if err != nil {
			return err
		}

		if err := fn(ctx, current); err != nil {
			return err
		}
		if err := c.repos.Carts.Touch(ctx, current.ID); err != nil {
			return err
		}

		cart, err = c.reload(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.view(cart), nil
}

// setQuantity enforces the line invariants: the product is active,
// 1 <= qty <= max line quantity and qty <= stock.
func (c *CartService) setQuantity(ctx context.Context, cart *model.Cart, productID uint, qty int) error {
	product, err := c.repos.Products.GetByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return invalidField("PRODUCT_NOT_FOUND", "productId", "product does not exist")
		}
		return err
	}
	if !product.IsActive {
		return errs.NewConflictError(fmt.Sprintf("%s is no longer available", product.Name), errs.Code("PRODUCT_UNAVAILABLE"), nil)
	}

	if maxQty := c.server.Config.Storefront.MaxLineQuantity; qty > maxQty {
		return invalidField("QUANTITY_LIMIT_EXCEEDED", "quantity", fmt.Sprintf("at most %d units per product", maxQty))
	}
	if !product.InStock(qty) {
		return errs.NewConflictError(
			fmt.Sprintf("Only %d of %s left in stock", product.Stock, product.Name),
			errs.Code("INSUFFICIENT_STOCK"),
			nil,
		)
	}

	return c.repos.Carts.SetItemQuantity(ctx, cart.ID, productID, qty)
}

// load resolves the owner's cart. With create set a missing cart is
// created; otherwise nil is returned. A guest cart presented by a
// signed-in user is merged into the user's cart.
func (c *CartService) load(ctx context.Context, owner CartOwner, create bool) (*model.Cart, error) {
	if owner.UserID != nil {
		return c.loadUserCart(ctx, *owner.UserID, owner.Token, create)
	}

	if owner.Token != "" && validation.IsValidUUID(owner.Token) {
		cart, err := c.repos.Carts.GetByToken(ctx, owner.Token)
		if err == nil {
			return cart, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	if !create {
		return nil, nil
	}

	// Client-supplied tokens that match no cart are not reused.
	token := utils.NewCartToken()
	cart := &model.Cart{Token: &token}
	if err := c.repos.Carts.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *CartService) loadUserCart(ctx context.Context, userID uint, guestToken string, create bool) (*model.Cart, error) {
	cart, err := c.repos.Carts.GetByUser(ctx, userID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	var guest *model.Cart
	if guestToken != "" && validation.IsValidUUID(guestToken) {
		guest, err = c.repos.Carts.GetByToken(ctx, guestToken)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}

	if guest == nil && (cart != nil || !create) {
		return cart, nil
	}

	err = c.repos.WithinTx(ctx, func(ctx context.Context) error {
		if cart == nil {
			cart = &model.Cart{UserID: &userID}
			if err := c.repos.Carts.Create(ctx, cart); err != nil {
				return err
			}
		}
		if guest == nil {
			return nil
		}

		if err := c.merge(ctx, cart, guest); err != nil {
			return err
		}
		merged, err := c.reload(ctx, cart)
		if err != nil {
			return err
		}
		*cart = *merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// merge moves the guest cart's lines into cart, summing quantities capped
// at the line maximum and the current stock, then deletes the guest cart.
func (c *CartService) merge(ctx context.Context, cart, guest *model.Cart) error {
	maxQty := c.server.Config.Storefront.MaxLineQuantity

	for _, item := range guest.Items {
		qty := item.Quantity
		if existing := findItem(cart, item.ProductID); existing != nil {
			qty += existing.Quantity
		}
		qty = min(qty, maxQty)
		if item.Product != nil {
			qty = min(qty, item.Product.Stock)
		}
		if qty <= 0 {
			continue
		}

		if err := c.repos.Carts.SetItemQuantity(ctx, cart.ID, item.ProductID, qty); err != nil {
			return err
		}
	}

	if err := c.repos.Carts.Delete(ctx, guest.ID); err != nil {
		return err
	}

	c.server.Logger.Info().
		Uint("cart_id", cart.ID).
		Uint("guest_cart_id", guest.ID).
		Int("lines", len(guest.Items)).
		Msg("guest cart merged")
	return nil
}

func (c *CartService) reload(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	if cart.UserID != nil {
		return c.repos.Carts.GetByUser(ctx, *cart.UserID)
	}
	return c.repos.Carts.GetByToken(ctx, *cart.Token)
}

func (c *CartService) view(cart *model.Cart) *model.CartView {
	currency := c.server.Config.Storefront.Currency
	if cart == nil {
		return &model.CartView{Lines: []model.CartLine{}, Subtotal: decimal.Zero, Currency: currency}
	}
	v := model.BuildCartView(cart, currency)
	return &v
}

func findItem(cart *model.Cart, productID uint) *model.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}
