package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CreateOrderItemRequest is one requested line of a new order.
type CreateOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r CreateOrderItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

// CreateOrderRequest for POST /orders
type CreateOrderRequest struct {
	OrderType      string                   `json:"order_type"`
	FromLocationID uuid.UUID                `json:"from_location_id"`
	ToLocationID   *uuid.UUID               `json:"to_location_id"`
	Items          []CreateOrderItemRequest `json:"items"`
	Actor          string                   `json:"actor"`
}

func (r CreateOrderRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.OrderType, validation.Required, validation.In(TypeDealerOrder, TypeCustomerOrder)),
		validation.Field(&r.FromLocationID, validation.Required),
		validation.Field(&r.Items, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.Actor, validation.Required),
	)
	if err != nil {
		return err
	}

	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	if r.OrderType == TypeDealerOrder && r.ToLocationID == nil {
		return ErrMissingDestination
	}
	return nil
}

// UpdateOrderStatusRequest for PATCH /orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (r UpdateOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed,
		)),
		validation.Field(&r.Actor, validation.Required),
	)
}

// ListOrdersRequest for GET /orders
type ListOrdersRequest struct {
	OrderType      *string    `form:"order_type"`
	Status         *string    `form:"status"`
	FromLocationID *uuid.UUID `form:"from_location_id"`
	ToLocationID   *uuid.UUID `form:"to_location_id"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	Limit          int        `form:"limit" binding:"omitempty,min=1,max=100"`
}
