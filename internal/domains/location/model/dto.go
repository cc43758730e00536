package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CreateLocationRequest for POST /locations
type CreateLocationRequest struct {
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Kind      string    `json:"kind"`
}

func (r CreateLocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompanyID, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Kind, validation.Required, validation.In(KindFactory, KindWarehouse, KindStorefront)),
	)
}

// UpdateLocationRequest for PUT /locations/:id
type UpdateLocationRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateLocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)
}

// ListLocationFilter for GET /locations
type ListLocationFilter struct {
	CompanyID *uuid.UUID `form:"company_id"`
	Kind      *string    `form:"kind"`
	IsActive  *bool      `form:"is_active"`
}
