package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pedido (canal de venta alterno).
const (
	OrderStatusPending    = "pending"
	OrderStatusValidated  = "validated"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusValidated, OrderStatusCancelled},
	OrderStatusValidated:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusCancelled},
	OrderStatusCancelled:  {},
}

// OrderCanTransition indica si el cambio de estado from -> to está permitido.
func OrderCanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderStatusCommitsStock indica si el estado compromete stock (el pedido
// debe tener el inventario descontado mientras esté en ese estado).
func OrderStatusCommitsStock(status string) bool {
	switch status {
	case OrderStatusValidated, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Order representa un pedido del canal alterno de ventas: misma semántica de
// stock que la factura (descuenta al comprometer, restaura al cancelar) con su
// propio vocabulario de estados. StockDeducted es la guarda de idempotencia.
type Order struct {
	ID            string
	Number        string
	Status        string
	LocationID    string
	ClientName    string
	Total         decimal.Decimal
	StockDeducted bool
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []*OrderItem
}

// OrderItem línea de pedido.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	PackMode  bool
}

// Value valor de la línea.
func (it *OrderItem) Value() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}
