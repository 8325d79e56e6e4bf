package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/stock/movements.
// Quantity va en unidades, o en paquetes si pack_mode.
type RegisterMovementRequest struct {
	ProductID        string           `json:"product_id" validate:"required,uuid"`
	Kind             string           `json:"kind" validate:"required,oneof=ENTRY EXIT TRANSFER ADJUSTMENT RETURN"`
	Quantity         int64            `json:"quantity"`
	SourceLocationID string           `json:"source_location_id,omitempty"`
	DestLocationID   string           `json:"dest_location_id,omitempty"`
	PackMode         bool             `json:"pack_mode"`
	Correction       bool             `json:"correction"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference        string           `json:"reference,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	Kind             string           `json:"kind"`
	Quantity         int64            `json:"quantity"`
	SourceLocationID string           `json:"source_location_id,omitempty"`
	DestLocationID   string           `json:"dest_location_id,omitempty"`
	PackMode         bool             `json:"pack_mode"`
	Correction       bool             `json:"correction"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference        string           `json:"reference,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// StockLevelResponse salida de la proyección de stock.
type StockLevelResponse struct {
	ProductID    string    `json:"product_id"`
	LocationID   string    `json:"location_id"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateNotesRequest body para PATCH /api/stock/movements/:id/notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// SetReorderLevelRequest body para PUT /api/stock/levels/:product/:location/reorder.
type SetReorderLevelRequest struct {
	ReorderLevel int64 `json:"reorder_level" validate:"min=0"`
}
