package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de pedido en entrada.
type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	PackMode  bool            `json:"pack_mode"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	LocationID    string             `json:"location_id" validate:"required,uuid"`
	ClientName    string             `json:"client_name" validate:"omitempty,max=200"`
	InitialStatus string             `json:"initial_status" validate:"omitempty,oneof=pending validated"`
	Notes         string             `json:"notes" validate:"omitempty,max=2000"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemResponse línea de pedido en salida.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	PackMode  bool            `json:"pack_mode"`
}

// OrderResponse salida de pedido.
type OrderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Status        string              `json:"status"`
	LocationID    string              `json:"location_id"`
	ClientName    string              `json:"client_name,omitempty"`
	Total         decimal.Decimal     `json:"total"`
	StockDeducted bool                `json:"stock_deducted"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}
