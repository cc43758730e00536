package model

import (
	"time"

	"github.com/google/uuid"
)

// ===================================
// REQUEST DTOs
// ===================================

// AdjustStockRequest covers manufacture, return and adjustment movements.
// Quantity may be negative only for adjustment.
type AdjustStockRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Type       string    `json:"type" binding:"required,oneof=manufacture return adjustment"`
	Quantity   int       `json:"quantity" binding:"required"`
	Actor      string    `json:"actor" binding:"required"`
}

// SellStockRequest is an unreserved (offline) sale.
type SellStockRequest struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
	Actor      string    `json:"actor" binding:"required"`
}

// TransferStockRequest moves stock between two locations atomically.
type TransferStockRequest struct {
	ProductID      uuid.UUID `json:"product_id" binding:"required"`
	FromLocationID uuid.UUID `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID `json:"to_location_id" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1"`
	Actor          string    `json:"actor" binding:"required"`
}

// ListInventoryRequest holds query parameters for listing records.
type ListInventoryRequest struct {
	ProductID  *uuid.UUID `form:"product_id"`
	LocationID *uuid.UUID `form:"location_id"`
	LowStock   *bool      `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SearchInventoryRequest looks up the unique (product, location) record.
type SearchInventoryRequest struct {
	ProductID  uuid.UUID `form:"product_id" binding:"required"`
	LocationID uuid.UUID `form:"location_id" binding:"required"`
}

// ListMovementsRequest holds query parameters for the audit trail.
type ListMovementsRequest struct {
	ProductID    *uuid.UUID `form:"product_id"`
	LocationID   *uuid.UUID `form:"location_id"`
	MovementType *string    `form:"movement_type"`
	OrderID      *uuid.UUID `form:"order_id"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	Limit        int        `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ===================================
// RESPONSE DTOs
// ===================================

type InventoryResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	LocationID     uuid.UUID `json:"location_id"`
	TotalStock     int       `json:"total_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	AvailableStock int       `json:"available_stock"`
	ReorderLevel   int       `json:"reorder_level"`
	IsLowStock     bool      `json:"is_low_stock"`
	Version        int       `json:"version"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListInventoryResponse struct {
	Items      []InventoryResponse `json:"items"`
	TotalItems int                 `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

type MovementResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	FromLocationID *uuid.UUID `json:"from_location_id,omitempty"`
	ToLocationID   *uuid.UUID `json:"to_location_id,omitempty"`
	Quantity       int        `json:"quantity"`
	MovementType   string     `json:"movement_type"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	Actor          string     `json:"actor"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ListMovementsResponse struct {
	Items      []MovementResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

// ===================================
// MAPPERS (Model <-> DTO)
// ===================================

func (i *Inventory) ToResponse() InventoryResponse {
	return InventoryResponse{
		ID:             i.ID,
		ProductID:      i.ProductID,
		LocationID:     i.LocationID,
		TotalStock:     i.TotalStock,
		ReservedStock:  i.ReservedStock,
		AvailableStock: i.AvailableStock(),
		ReorderLevel:   i.ReorderLevel,
		IsLowStock:     i.IsLowStock(),
		Version:        i.Version,
		UpdatedAt:      i.UpdatedAt,
	}
}

func ToResponseList(records []Inventory) []InventoryResponse {
	responses := make([]InventoryResponse, len(records))
	for i, rec := range records {
		responses[i] = rec.ToResponse()
	}
	return responses
}

func (m *Movement) ToResponse() MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
		Quantity:       m.Quantity,
		MovementType:   m.MovementType,
		OrderID:        m.OrderID,
		Actor:          m.Actor,
		CreatedAt:      m.CreatedAt,
	}
}

func ToMovementResponseList(movements []Movement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = m.ToResponse()
	}
	return responses
}
