package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Order types. A dealer order restocks another location, a customer order
// leaves the network.
const (
	TypeDealerOrder   = "dealer_order"
	TypeCustomerOrder = "customer_order"
)

// allowedTransitions is the order state machine. cancelled and failed are
// terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusFailed},
	StatusConfirmed: {StatusShipped, StatusCancelled, StatusFailed},
	StatusShipped:   {StatusDelivered},
}

// CanTransition reports whether from → to is a legal order transition.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transitions leave status.
func IsTerminalStatus(status string) bool {
	return len(allowedTransitions[status]) == 0
}

func IsValidOrderType(orderType string) bool {
	return orderType == TypeDealerOrder || orderType == TypeCustomerOrder
}

// Order is a stock request flowing through the fulfillment workflow. Items
// and prices are frozen at creation.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderNumber    string          `json:"order_number" db:"order_number"`
	OrderType      string          `json:"order_type" db:"order_type"`
	FromLocationID uuid.UUID       `json:"from_location_id" db:"from_location_id"`
	ToLocationID   *uuid.UUID      `json:"to_location_id,omitempty" db:"to_location_id"`
	Status         string          `json:"status" db:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem is one line of an order with its price snapshot.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	PriceAtTime decimal.Decimal `json:"price_at_time" db:"price_at_time"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// OrderStatusHistory is one audit entry of the order state machine.
type OrderStatusHistory struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	FromStatus string    `json:"from_status" db:"from_status"`
	ToStatus   string    `json:"to_status" db:"to_status"`
	Actor      string    `json:"actor" db:"actor"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
