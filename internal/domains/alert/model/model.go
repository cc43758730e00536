package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Alert types.
const (
	TypeLowStock   = "low_stock"
	TypeHighDemand = "high_demand"
	TypeOverstock  = "overstock"
)

// Alert statuses.
const (
	StatusActive   = "active"
	StatusResolved = "resolved"
)

func IsValidType(alertType string) bool {
	switch alertType {
	case TypeLowStock, TypeHighDemand, TypeOverstock:
		return true
	}
	return false
}

var (
	// ErrAlertNotFound is returned when no alert matches the given ID.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrAlreadyResolved is returned when resolving a resolved alert.
	ErrAlreadyResolved = errors.New("alert already resolved")
)

// Alert is one operator notification about a ledger record.
type Alert struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CompanyID  uuid.UUID  `json:"company_id" db:"company_id"`
	Type       string     `json:"type" db:"type"`
	ProductID  uuid.UUID  `json:"product_id" db:"product_id"`
	LocationID uuid.UUID  `json:"location_id" db:"location_id"`
	Message    string     `json:"message" db:"message"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// ListAlertsFilter for GET /alerts
type ListAlertsFilter struct {
	CompanyID  *uuid.UUID `form:"company_id"`
	Type       *string    `form:"type"`
	Status     *string    `form:"status"`
	ProductID  *uuid.UUID `form:"product_id"`
	LocationID *uuid.UUID `form:"location_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=100"`
}
