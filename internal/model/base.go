// Package model holds the persisted entities and the request and response
// payloads of the API.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Base is embedded by every table.
type Base struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
	MaxPage      = 100000
)

// PageQuery is embedded by list requests.
type PageQuery struct {
	Page  *int `query:"page" validate:"omitempty,min=1,max=100000"`
	Limit *int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Resolve returns page and limit with defaults applied, clamped to
// [1, MaxPage] and [1, MaxLimit].
func (q PageQuery) Resolve() (page, limit int) {
	page, limit = DefaultPage, DefaultLimit
	if q.Page != nil {
		page = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	return min(max(page, 1), MaxPage), min(max(limit, 1), MaxLimit)
}

// PaginatedResponse wraps one page of results.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResponse fills in TotalPages. Data is never nil so clients
// always get an array.
func NewPaginatedResponse[T any](data []T, page, limit int, total int64) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return &PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// RoundMoney rounds to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
