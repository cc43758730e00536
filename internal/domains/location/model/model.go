package model

import (
	"time"

	"github.com/google/uuid"
)

// Location kinds. A factory produces stock, a warehouse distributes it and a
// storefront sells it.
const (
	KindFactory    = "factory"
	KindWarehouse  = "warehouse"
	KindStorefront = "storefront"
)

func IsValidKind(kind string) bool {
	switch kind {
	case KindFactory, KindWarehouse, KindStorefront:
		return true
	}
	return false
}

// Location is a physical point of the supply chain that holds stock.
type Location struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Kind      string    `json:"kind" db:"kind"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
