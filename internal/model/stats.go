package model

import "github.com/shopspring/decimal"

// LowStockProduct is a dashboard row for a product running out.
type LowStockProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	SKU   string `json:"sku"`
	Stock int    `json:"stock"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	Products       int64                 `json:"products"`
	ActiveProducts int64                 `json:"activeProducts"`
	LowStock       []LowStockProduct     `json:"lowStock"`
	LowStockLimit  int                   `json:"lowStockThreshold"`
	OrdersByStatus map[OrderStatus]int64 `json:"ordersByStatus"`
	Revenue        decimal.Decimal       `json:"revenue"`
	Currency       string                `json:"currency"`
	Reviews        int64                 `json:"reviews"`
	Users          int64                 `json:"users"`
}

// Tables lists every persisted type, parents first.
func Tables() []any {
	return []any{
		&User{},
		&Brand{},
		&Category{},
		&Product{},
		&ProductImage{},
		&ProductModel{},
		&Review{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}
