package model

import (
	"strings"

	"github.com/kelvin262292/storefront/internal/validation"
)

// Review is one user's rating of one product.
type Review struct {
	Base
	ProductID uint   `json:"productId" gorm:"not null;uniqueIndex:idx_reviews_product_user"`
	UserID    uint   `json:"-" gorm:"not null;uniqueIndex:idx_reviews_product_user"`
	User      *User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Rating    int    `json:"rating" gorm:"not null"`
	Title     string `json:"title"`
	Body      string `json:"body" gorm:"not null"`

	Product *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Author is filled from User for display.
	Author string `json:"author" gorm:"-"`
}

type CreateReviewRequest struct {
	Slug   string `json:"-" param:"slug" validate:"required,max=140"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"max=120"`
	Body   string `json:"body" validate:"required,min=1,max=2000"`
}

func (r *CreateReviewRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	return validation.Struct(r)
}

// ReviewList is the product reviews page.
type ReviewList struct {
	PaginatedResponse[Review]
	Summary RatingSummary `json:"summary"`
}
