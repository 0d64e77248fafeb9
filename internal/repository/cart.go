package repository

import (
	"context"
	"time"

	"github.com/kelvin262292/storefront/internal/model"
	"gorm.io/gorm"
)

type CartRepository struct {
	base
}

func (r *CartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Images", orderImages)
}

// GetByUser returns the user's cart with items and products, or a 404.
func (r *CartRepository) GetByUser(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	if err := r.withItems(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, notFound(err, "cart")
	}
	return &cart, nil
}

// GetByToken returns a guest cart with items and products, or a 404.
func (r *CartRepository) GetByToken(ctx context.Context, token string) (*model.Cart, error) {
	var cart model.Cart
	err := r.withItems(ctx).Where("token = ? AND user_id IS NULL", token).First(&cart).Error
	if err != nil {
		return nil, notFound(err, "cart")
	}
	return &cart, nil
}

func (r *CartRepository) Create(ctx context.Context, cart *model.Cart) error {
	return r.db(ctx).Omit("User", "Items").Create(cart).Error
}

// Touch bumps updated_at so idle-cart cleanup sees the cart as active.
func (r *CartRepository) Touch(ctx context.Context, cartID uint) error {
	return r.db(ctx).Model(&model.Cart{}).Where("id = ?", cartID).
		UpdateColumn("updated_at", time.Now()).Error
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID uint, qty int) error {
	item := model.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
	res := r.db(ctx).Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db(ctx).Omit("Product").Create(&item).Error
}

// DeleteItem reports whether a line was removed.
func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID uint) (bool, error) {
	res := r.db(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&model.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID uint) error {
	return r.db(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

func (r *CartRepository) Delete(ctx context.Context, cartID uint) error {
	return r.db(ctx).Delete(&model.Cart{}, cartID).Error
}

// DeleteIdleGuestCarts removes guest carts untouched since before. Their
// items go with them through ON DELETE CASCADE.
func (r *CartRepository) DeleteIdleGuestCarts(ctx context.Context, before time.Time) (int64, error) {
	res := r.db(ctx).
		Where("user_id IS NULL AND updated_at < ?", before).
		Delete(&model.Cart{})
	return res.RowsAffected, res.Error
}
