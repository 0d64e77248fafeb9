package model

import (
	"github.com/kelvin262292/storefront/internal/validation"
)

// Brand groups products by manufacturer.
type Brand struct {
	Base
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// Category is a node in a shallow tree; ParentID is nil for roots.
type Category struct {
	Base
	Name        string     `json:"name" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null"`
	Description string     `json:"description"`
	ParentID    *uint      `json:"parentId"`
	Parent      *Category  `json:"parent,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Children    []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

// BrandDetail is the brand page: the brand plus one page of its products.
type BrandDetail struct {
	Brand
	Products *PaginatedResponse[Product] `json:"products"`
}

// CategoryDetail is the category page. Products include those of direct
// child categories.
type CategoryDetail struct {
	Category
	Products *PaginatedResponse[Product] `json:"products"`
}

// CreateBrandRequest is the admin create payload. Slug is derived from Name
// when empty.
type CreateBrandRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Slug        string `json:"slug" validate:"omitempty,max=140,slug"`
	Description string `json:"description" validate:"max=2000"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
}

func (r *CreateBrandRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateBrandRequest struct {
	ID          uint    `json:"-" param:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug" validate:"omitempty,max=140,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,url"`
}

func (r *UpdateBrandRequest) Validate() error {
	return validation.Struct(r)
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Slug        string `json:"slug" validate:"omitempty,max=140,slug"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    *uint  `json:"parentId" validate:"omitempty,min=1"`
}

func (r *CreateCategoryRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateCategoryRequest struct {
	ID          uint    `json:"-" param:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug" validate:"omitempty,max=140,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *uint   `json:"parentId" validate:"omitempty,min=1"`
	// ClearParent moves the category to the root.
	ClearParent bool `json:"clearParent"`
}

func (r *UpdateCategoryRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.ParentID != nil && *r.ParentID == r.ID {
		return validation.CustomValidationErrors{{Field: "parentId", Message: "a category cannot be its own parent"}}
	}
	return nil
}

// SlugRequest addresses a resource by slug in the path.
type SlugRequest struct {
	Slug string `json:"-" param:"slug" validate:"required,max=140"`
}

func (r *SlugRequest) Validate() error {
	return validation.Struct(r)
}

// IDRequest addresses a resource by numeric id in the path.
type IDRequest struct {
	ID uint `json:"-" param:"id" validate:"required"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

// SlugPageRequest addresses a resource by slug and pages through a related
// listing.
type SlugPageRequest struct {
	PageQuery
	Slug string `json:"-" param:"slug" validate:"required,max=140"`
}

func (r *SlugPageRequest) Validate() error {
	return validation.Struct(r)
}

// EmptyRequest is used by endpoints without input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}
