package company

import (
	"time"
)

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	WhyJoinUs   string    `json:"whyJoinUs,omitempty"`
	Website     string    `json:"website,omitempty"`
	Twitter     string    `json:"twitter,omitempty"`
	Linkedin    string    `json:"linkedin,omitempty"`
	AddressLine string    `json:"addressLine,omitempty"`
	City        string    `json:"city,omitempty"`
	Zipcode     string    `json:"zipcode,omitempty"`
	LogoImageID string    `json:"logoImageId,omitempty"`
	Followers   []string  `json:"followers"`
	UserID      string    `json:"userId"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CompanyRq struct {
	Name string `json:"name"`
}

// CompanyRqUpdate is a sparse patch: nil fields are left untouched.
type CompanyRqUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Overview    *string `json:"overview,omitempty"`
	WhyJoinUs   *string `json:"whyJoinUs,omitempty"`
	Website     *string `json:"website,omitempty"`
	Twitter     *string `json:"twitter,omitempty"`
	Linkedin    *string `json:"linkedin,omitempty"`
	AddressLine *string `json:"addressLine,omitempty"`
	City        *string `json:"city,omitempty"`
	Zipcode     *string `json:"zipcode,omitempty"`
	LogoImageID *string `json:"logoImageId,omitempty"`
}
