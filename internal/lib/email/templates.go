package email

// Template names an embedded file under templates/.
type Template string

const (
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplateOrderShipped      Template = "order_shipped"
)
