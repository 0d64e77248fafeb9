package model

import (
	"github.com/kelvin262292/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// Cart belongs either to a signed-in user or to a guest token.
type Cart struct {
	Base
	UserID *uint      `json:"-" gorm:"uniqueIndex"`
	User   *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Token  *string    `json:"-" gorm:"uniqueIndex"`
	Items  []CartItem `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// CartItem is one product line. A cart holds at most one line per product.
type CartItem struct {
	Base
	CartID    uint     `json:"-" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint     `json:"productId" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	Product   *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `json:"quantity" gorm:"not null"`
}

// CartLine is a priced cart line.
type CartLine struct {
	ProductID uint            `json:"productId"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// CartView is the cart as clients see it. Token is only set for guest carts.
type CartView struct {
	Token     string          `json:"token,omitempty"`
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Currency  string          `json:"currency"`
}

// BuildCartView prices the cart from the current product data. Items
// without a loaded product are skipped. Lines keep the order of items.
func BuildCartView(cart *Cart, currency string) CartView {
	view := CartView{
		Lines:    make([]CartLine, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
		Currency: currency,
	}
	if cart.UserID == nil && cart.Token != nil {
		view.Token = *cart.Token
	}

	for _, item := range cart.Items {
		p := item.Product
		if p == nil {
			continue
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		line := CartLine{
			ProductID: p.ID,
			Slug:      p.Slug,
			Name:      p.Name,
			SKU:       p.SKU,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
			LineTotal: RoundMoney(lineTotal),
			Stock:     p.Stock,
			Available: p.IsActive && p.Stock >= item.Quantity,
		}
		if len(p.Images) > 0 {
			line.ImageURL = p.Images[0].URL
		}

		view.Lines = append(view.Lines, line)
		view.ItemCount += item.Quantity
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}

	view.Subtotal = RoundMoney(view.Subtotal)
	return view
}

// AddCartItemRequest adds Quantity units, merging with an existing line.
type AddCartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

func (r *AddCartItemRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateCartItemRequest sets the line quantity; zero removes the line.
type UpdateCartItemRequest struct {
	ProductID uint `json:"-" param:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=0"`
}

func (r *UpdateCartItemRequest) Validate() error {
	return validation.Struct(r)
}

type RemoveCartItemRequest struct {
	ProductID uint `json:"-" param:"productId" validate:"required"`
}

func (r *RemoveCartItemRequest) Validate() error {
	return validation.Struct(r)
}
