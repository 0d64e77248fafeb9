package model

import (
	"github.com/kelvin262292/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalogue item.
type Product struct {
	Base
	Name           string              `json:"name" gorm:"not null"`
	Slug           string              `json:"slug" gorm:"uniqueIndex;not null"`
	SKU            string              `json:"sku" gorm:"column:sku;uniqueIndex;not null"`
	Description    string              `json:"description"`
	Price          decimal.Decimal     `json:"price" gorm:"type:numeric(12,2);not null"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice" gorm:"type:numeric(12,2)"`
	Stock          int                 `json:"stock" gorm:"not null;default:0"`
	IsActive       bool                `json:"isActive" gorm:"not null"`
	IsFeatured     bool                `json:"isFeatured" gorm:"not null;default:false"`
	RatingAvg      float64             `json:"ratingAvg" gorm:"not null;default:0"`
	ReviewCount    int                 `json:"reviewCount" gorm:"not null;default:0"`

	BrandID    *uint     `json:"brandId"`
	Brand      *Brand    `json:"brand,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	CategoryID *uint     `json:"categoryId"`
	Category   *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	Images  []ProductImage `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Model3D *ProductModel  `json:"model,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// InStock reports whether at least qty units can be sold.
func (p *Product) InStock(qty int) bool {
	return p.Stock >= qty
}

// ProductImage is an ordered gallery image.
type ProductImage struct {
	Base
	ProductID uint   `json:"productId" gorm:"not null;index"`
	URL       string `json:"url" gorm:"column:url;not null"`
	AltText   string `json:"altText"`
	Position  int    `json:"position" gorm:"not null;default:0"`
}

// ImageInput is an image in a product create or update payload.
type ImageInput struct {
	URL     string `json:"url" validate:"required,url"`
	AltText string `json:"altText" validate:"max=200"`
}

// ProductSort names a listing order.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortOldest    ProductSort = "oldest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
	SortName      ProductSort = "name"
)

// ListProductsQuery holds every optional catalogue filter. Nil means "not
// filtered".
type ListProductsQuery struct {
	PageQuery
	Q         string           `query:"q" validate:"max=200"`
	Category  string           `query:"category" validate:"omitempty,max=140"`
	Brand     string           `query:"brand" validate:"omitempty,max=140"`
	MinPrice  *decimal.Decimal `query:"minPrice"`
	MaxPrice  *decimal.Decimal `query:"maxPrice"`
	InStock   *bool            `query:"inStock"`
	HasModel  *bool            `query:"hasModel"`
	Featured  *bool            `query:"featured"`
	MinRating *float64         `query:"minRating" validate:"omitempty,min=0,max=5"`
	Sort      ProductSort      `query:"sort" validate:"omitempty,oneof=newest oldest price_asc price_desc rating name"`

	// IncludeInactive is set by the admin listing, never bound from the
	// request.
	IncludeInactive bool `query:"-" json:"-"`
}

func (q *ListProductsQuery) Validate() error {
	if err := validation.Struct(q); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		errs = append(errs, validation.CustomValidationError{Field: "minPrice", Message: "must not be negative"})
	}
	if q.MaxPrice != nil && q.MaxPrice.IsNegative() {
		errs = append(errs, validation.CustomValidationError{Field: "maxPrice", Message: "must not be negative"})
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		errs = append(errs, validation.CustomValidationError{Field: "minPrice", Message: "must not exceed maxPrice"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateProductRequest is the admin create payload. Slug is derived from
// Name when empty.
type CreateProductRequest struct {
	Name           string           `json:"name" validate:"required,min=1,max=200"`
	Slug           string           `json:"slug" validate:"omitempty,max=140,slug"`
	SKU            string           `json:"sku" validate:"required,min=1,max=64"`
	Description    string           `json:"description" validate:"max=10000"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Stock          int              `json:"stock" validate:"min=0"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     bool             `json:"isFeatured"`
	BrandID        *uint            `json:"brandId" validate:"omitempty,min=1"`
	CategoryID     *uint            `json:"categoryId" validate:"omitempty,min=1"`
	Images         []ImageInput     `json:"images" validate:"max=20,dive"`
}

func (r *CreateProductRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return validatePrices(&r.Price, r.CompareAtPrice)
}

// UpdateProductRequest changes only the fields present. Images, when given,
// replace the whole gallery.
type UpdateProductRequest struct {
	ID             uint             `json:"-" param:"id" validate:"required"`
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Slug           *string          `json:"slug" validate:"omitempty,max=140,slug"`
	SKU            *string          `json:"sku" validate:"omitempty,min=1,max=64"`
	Description    *string          `json:"description" validate:"omitempty,max=10000"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Stock          *int             `json:"stock" validate:"omitempty,min=0"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     *bool            `json:"isFeatured"`
	BrandID        *uint            `json:"brandId" validate:"omitempty,min=1"`
	CategoryID     *uint            `json:"categoryId" validate:"omitempty,min=1"`
	Images         *[]ImageInput    `json:"images" validate:"omitempty,max=20,dive"`
}

func (r *UpdateProductRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return validatePrices(r.Price, r.CompareAtPrice)
}

func validatePrices(price, compareAt *decimal.Decimal) error {
	var errs validation.CustomValidationErrors
	if price != nil {
		if price.IsNegative() {
			errs = append(errs, validation.CustomValidationError{Field: "price", Message: "must not be negative"})
		} else if !price.Equal(price.Round(2)) {
			errs = append(errs, validation.CustomValidationError{Field: "price", Message: "must have at most 2 decimal places"})
		}
	}
	if compareAt != nil && compareAt.IsNegative() {
		errs = append(errs, validation.CustomValidationError{Field: "compareAtPrice", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RatingSummary aggregates a product's reviews.
type RatingSummary struct {
	Average   float64     `json:"average"`
	Count     int64       `json:"count"`
	Histogram map[int]int `json:"histogram"`
}

// ProductDetail is the product page payload.
type ProductDetail struct {
	Product
	Rating RatingSummary `json:"rating"`
}
