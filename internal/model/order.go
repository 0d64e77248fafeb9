package model

import (
	"time"

	"github.com/kelvin262292/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CountsAsRevenue is true once payment has been taken and not reversed.
func (s OrderStatus) CountsAsRevenue() bool {
	return s == OrderStatusPaid || s == OrderStatusShipped || s == OrderStatusDelivered
}

// Address is a postal address. It is embedded into orders with a column
// prefix.
type Address struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	Region     string `json:"region" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// Order is an immutable record of a checkout plus its fulfilment status.
type Order struct {
	Base
	Number string      `json:"number" gorm:"uniqueIndex;not null"`
	UserID uint        `json:"-" gorm:"not null;index"`
	User   *User       `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	Status OrderStatus `json:"status" gorm:"not null;default:pending;index"`

	Email    string `json:"email" gorm:"not null"`
	FullName string `json:"fullName" gorm:"not null"`
	Phone    string `json:"phone"`

	ShippingAddress Address        `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	ShippingMethod  ShippingMethod `json:"shippingMethod" gorm:"not null"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod" gorm:"not null"`
	Notes           string         `json:"notes"`

	Currency    string          `json:"currency" gorm:"not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	ShippingFee decimal.Decimal `json:"shippingFee" gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`

	PaidAt      *time.Time `json:"paidAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CancelledAt *time.Time `json:"cancelledAt"`

	Items []OrderItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// ProductIDs lists the products still referenced by the order's lines.
func (o *Order) ProductIDs() []uint {
	ids := make([]uint, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	return ids
}

// OrderItem snapshots the product at purchase time. ProductID becomes nil
// if the product is later deleted.
type OrderItem struct {
	Base
	OrderID     uint            `json:"-" gorm:"not null;index"`
	ProductID   *uint           `json:"productId"`
	Product     *Product        `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ProductName string          `json:"productName" gorm:"not null"`
	ProductSlug string          `json:"productSlug" gorm:"not null"`
	SKU         string          `json:"sku" gorm:"column:sku;not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:numeric(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	LineTotal   decimal.Decimal `json:"lineTotal" gorm:"type:numeric(12,2);not null"`
}

type OrderNumberRequest struct {
	Number string `json:"-" param:"number" validate:"required,max=40"`
}

func (r *OrderNumberRequest) Validate() error {
	return validation.Struct(r)
}

type ListOrdersQuery struct {
	PageQuery
	Status OrderStatus `query:"status" validate:"omitempty,oneof=pending paid shipped delivered cancelled"`
}

func (q *ListOrdersQuery) Validate() error {
	return validation.Struct(q)
}

type UpdateOrderStatusRequest struct {
	Number string      `json:"-" param:"number" validate:"required,max=40"`
	Status OrderStatus `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	return validation.Struct(r)
}
