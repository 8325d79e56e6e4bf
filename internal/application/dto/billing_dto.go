package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea de factura en entrada. unit_price en cero toma el
// precio de lista del producto.
type InvoiceItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	Quantity    int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	PackMode    bool            `json:"pack_mode"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	LocationID     string               `json:"location_id" validate:"required,uuid"`
	ClientName     string               `json:"client_name" validate:"omitempty,max=200"`
	GlobalDiscount decimal.Decimal      `json:"global_discount"`
	InitialStatus  string               `json:"initial_status" validate:"omitempty,oneof=draft sent paid"`
	Notes          string               `json:"notes" validate:"omitempty,max=2000"`
	Items          []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateInvoiceItemsRequest body para PUT /api/invoices/:id/items.
type UpdateInvoiceItemsRequest struct {
	Items []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ChangeStatusRequest body para PATCH .../status (factura, recepción o pedido).
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RegisterPaymentRequest body para POST /api/invoices/:id/payments.
type RegisterPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// InvoiceItemResponse línea de factura en salida.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	PackMode    bool            `json:"pack_mode"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// InvoiceResponse salida de factura con totales.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	Number         string                `json:"number"`
	Status         string                `json:"status"`
	LocationID     string                `json:"location_id"`
	ClientName     string                `json:"client_name,omitempty"`
	GlobalDiscount decimal.Decimal       `json:"global_discount"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxTotal       decimal.Decimal       `json:"tax_total"`
	Total          decimal.Decimal       `json:"total"`
	TotalProfit    decimal.Decimal       `json:"total_profit"`
	AmountPaid     decimal.Decimal       `json:"amount_paid"`
	StockDeducted  bool                  `json:"stock_deducted"`
	Notes          string                `json:"notes,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
}
