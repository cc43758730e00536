package model

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Shipment statuses. Changes are forward-only; returned is reachable once
// the shipment has left the source.
const (
	StatusPending   = "pending"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
	StatusReturned  = "returned"
)

var allowedTransitions = map[string][]string{
	StatusPending:   {StatusInTransit},
	StatusInTransit: {StatusDelivered, StatusReturned},
	StatusDelivered: {StatusReturned},
}

// CanTransition reports whether from → to is a legal shipment transition.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var (
	// ErrShipmentNotFound is returned when no shipment matches the given ID.
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrShipmentExists is returned when the order already has a shipment.
	ErrShipmentExists = errors.New("order already has a shipment")

	// ErrInvalidTransition is returned for an illegal status change.
	ErrInvalidTransition = errors.New("invalid shipment status transition")
)

// NewInvalidTransitionError creates a detailed transition error.
func NewInvalidTransitionError(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Shipment tracks the physical delivery of one order.
type Shipment struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	OrderID           uuid.UUID  `json:"order_id" db:"order_id"`
	TrackingNumber    string     `json:"tracking_number" db:"tracking_number"`
	Carrier           string     `json:"carrier" db:"carrier"`
	Status            string     `json:"status" db:"status"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty" db:"estimated_delivery"`
	ActualDelivery    *time.Time `json:"actual_delivery,omitempty" db:"actual_delivery"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateShipmentRequest for POST /shipments
type CreateShipmentRequest struct {
	OrderID           uuid.UUID  `json:"order_id"`
	Carrier           string     `json:"carrier"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Actor             string     `json:"actor"`
}

func (r CreateShipmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderID, validation.Required),
		validation.Field(&r.Carrier, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Actor, validation.Required),
	)
}

// UpdateShipmentStatusRequest for PATCH /shipments/:id/status
type UpdateShipmentStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (r UpdateShipmentStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			StatusInTransit, StatusDelivered, StatusReturned,
		)),
		validation.Field(&r.Actor, validation.Required),
	)
}
