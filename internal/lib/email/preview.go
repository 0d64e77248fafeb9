package email

// PreviewData holds sample template data for rendering emails locally,
// keyed by template.
var PreviewData = map[Template]OrderData{
	TemplateOrderConfirmation: {
		CustomerName: "Ada Lovelace",
		OrderNumber:  "SF-20261018-4F9A2C1B",
		Lines: []OrderLine{
			{Name: "Walnut Desk Lamp", SKU: "LMP-001", Quantity: 2, UnitPrice: "49.00", LineTotal: "98.00"},
			{Name: "Linen Shade", SKU: "SHD-014", Quantity: 1, UnitPrice: "19.50", LineTotal: "19.50"},
		},
		Subtotal:       "117.50",
		ShippingFee:    "0.00",
		Total:          "117.50",
		Currency:       "USD",
		ShippingMethod: "standard",
		PaymentMethod:  "card",
		Address:        []string{"12 Analytical Row", "EC1A 1BB London", "GB"},
	},
	TemplateOrderShipped: {
		CustomerName:   "Ada Lovelace",
		OrderNumber:    "SF-20261018-4F9A2C1B",
		Total:          "117.50",
		Currency:       "USD",
		ShippingMethod: "express",
		Address:        []string{"12 Analytical Row", "EC1A 1BB London", "GB"},
	},
}
