package email

import (
	"context"
	"fmt"

	"github.com/kelvin262292/storefront/internal/model"
)

// OrderLine is one row of the order table in an email.
type OrderLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// OrderData is the template data shared by all order emails.
type OrderData struct {
	CustomerName   string
	OrderNumber    string
	Lines          []OrderLine
	Subtotal       string
	ShippingFee    string
	Total          string
	Currency       string
	ShippingMethod string
	PaymentMethod  string
	Address        []string
	Pickup         bool
}

// NewOrderData flattens an order (with items loaded) for templates.
func NewOrderData(o *model.Order) OrderData {
	data := OrderData{
		CustomerName:   o.FullName,
		OrderNumber:    o.Number,
		Subtotal:       o.Subtotal.StringFixed(2),
		ShippingFee:    o.ShippingFee.StringFixed(2),
		Total:          o.Total.StringFixed(2),
		Currency:       o.Currency,
		ShippingMethod: string(o.ShippingMethod),
		PaymentMethod:  string(o.PaymentMethod),
		Pickup:         o.ShippingMethod == model.ShippingPickup,
	}

	for _, item := range o.Items {
		data.Lines = append(data.Lines, OrderLine{
			Name:      item.ProductName,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}

	if !data.Pickup {
		a := o.ShippingAddress
		for _, line := range []string{a.Line1, a.Line2, joinNonEmpty(a.PostalCode, a.City), a.Region, a.Country} {
			if line != "" {
				data.Address = append(data.Address, line)
			}
		}
	}

	return data
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// SendOrderConfirmation tells the customer their order was received.
func (c *Client) SendOrderConfirmation(ctx context.Context, o *model.Order) error {
	return c.SendEmail(
		ctx,
		o.Email,
		fmt.Sprintf("Order %s confirmed", o.Number),
		TemplateOrderConfirmation,
		NewOrderData(o),
	)
}

// SendOrderShipped tells the customer their order is on its way.
func (c *Client) SendOrderShipped(ctx context.Context, o *model.Order) error {
	return c.SendEmail(
		ctx,
		o.Email,
		fmt.Sprintf("Order %s has shipped", o.Number),
		TemplateOrderShipped,
		NewOrderData(o),
	)
}
