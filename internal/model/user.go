package model

import "github.com/kelvin262292/storefront/internal/validation"

// User is a shopper or staff member. Identity lives in Clerk; ExternalID is
// the Clerk user id.
type User struct {
	Base
	ExternalID string `json:"-" gorm:"uniqueIndex;not null"`
	Email      string `json:"email" gorm:"uniqueIndex;not null"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	IsAdmin    bool   `json:"isAdmin" gorm:"not null;default:false"`
}

// DisplayName is the name shown next to reviews and in emails.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName[:1] + "."
	case u.FirstName != "":
		return u.FirstName
	default:
		return "Customer"
	}
}

// UpdateProfileRequest is the PATCH /me payload. Absent fields are left
// untouched.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validation.Struct(r)
}

// ListUsersQuery is the admin user listing.
type ListUsersQuery struct {
	PageQuery
	Q string `query:"q" validate:"max=100"`
}

func (q *ListUsersQuery) Validate() error {
	return validation.Struct(q)
}
