package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptItemRequest línea de recepción en entrada. unit_cost es el costo
// pactado con el proveedor (por paquete si pack_mode).
type ReceiptItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int64           `json:"quantity" validate:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	PackMode  bool            `json:"pack_mode"`
}

// CreateReceiptRequest body para POST /api/receipts.
type CreateReceiptRequest struct {
	LocationID    string               `json:"location_id" validate:"required,uuid"`
	SupplierName  string               `json:"supplier_name" validate:"omitempty,max=200"`
	DeliveryCost  decimal.Decimal      `json:"delivery_cost"`
	InitialStatus string               `json:"initial_status" validate:"omitempty,oneof=draft received"`
	Notes         string               `json:"notes" validate:"omitempty,max=2000"`
	Items         []ReceiptItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReceiptItemResponse línea de recepción en salida; unit_cost ya incluye el
// flete prorrateado cuando costs_spread es true.
type ReceiptItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	PackMode  bool            `json:"pack_mode"`
}

// ReceiptResponse salida de recepción.
type ReceiptResponse struct {
	ID               string                `json:"id"`
	Number           string                `json:"number"`
	Status           string                `json:"status"`
	LocationID       string                `json:"location_id"`
	SupplierName     string                `json:"supplier_name,omitempty"`
	DeliveryCost     decimal.Decimal       `json:"delivery_cost"`
	CostsSpread      bool                  `json:"costs_spread"`
	MerchandiseTotal decimal.Decimal       `json:"merchandise_total"`
	Total            decimal.Decimal       `json:"total"`
	StockAdded       bool                  `json:"stock_added"`
	Notes            string                `json:"notes,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Items            []ReceiptItemResponse `json:"items,omitempty"`
}
