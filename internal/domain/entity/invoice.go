package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura de venta.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusSent          = "sent"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusCancelled     = "cancelled"
)

// invoiceTransitions define la máquina de estados de la factura.
var invoiceTransitions = map[string][]string{
	InvoiceStatusDraft:         {InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusSent:          {InvoiceStatusPaid, InvoiceStatusPartiallyPaid, InvoiceStatusCancelled},
	InvoiceStatusPartiallyPaid: {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:          {InvoiceStatusCancelled},
	InvoiceStatusCancelled:     {},
}

// InvoiceCanTransition indica si el cambio de estado from -> to está permitido.
func InvoiceCanTransition(from, to string) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvoiceStatusCommitsStock indica si el estado implica una venta comprometida
// (el stock debe estar descontado mientras la factura esté en ese estado).
func InvoiceStatusCommitsStock(status string) bool {
	switch status {
	case InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusPartiallyPaid:
		return true
	}
	return false
}

// Invoice representa la cabecera de una factura de venta.
// StockDeducted es la guarda de idempotencia: garantiza que el libro de
// inventario se debita exactamente una vez por factura.
type Invoice struct {
	ID             string
	Number         string // consecutivo legible por año, ej. "FAC-2026-00042"
	Status         string
	LocationID     string // ubicación de la que sale la mercancía
	ClientName     string
	GlobalDiscount decimal.Decimal // descuento global del documento (monto)
	Subtotal       decimal.Decimal // suma de líneas netas de descuento de línea
	TaxTotal       decimal.Decimal
	Total          decimal.Decimal // Subtotal + TaxTotal - GlobalDiscount
	TotalProfit    decimal.Decimal // márgenes de línea - descuento global
	AmountPaid     decimal.Decimal // acumulado de pagos registrados
	StockDeducted  bool
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*InvoiceItem
}

// InvoiceItem representa una línea de factura. UnitCost es el snapshot del
// costo del producto al momento de crear la línea (costo de paquete si la
// línea es mayorista); los cambios de precio posteriores no alteran los
// márgenes históricos.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	ProductID   string
	Quantity    int64           // en unidades, o en paquetes si PackMode
	UnitPrice   decimal.Decimal // precio por unidad vendida (por paquete si PackMode)
	DiscountPct decimal.Decimal // descuento de línea en % (0-100)
	PackMode    bool
	UnitCost    decimal.Decimal // snapshot del costo al crear la línea
}

// GrossValue valor bruto de la línea antes de cualquier descuento.
func (it *InvoiceItem) GrossValue() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}

// NetValue valor de la línea neto del descuento de línea.
func (it *InvoiceItem) NetValue() decimal.Decimal {
	gross := it.GrossValue()
	if it.DiscountPct.IsZero() {
		return gross
	}
	factor := decimal.NewFromInt(1).Sub(it.DiscountPct.Div(decimal.NewFromInt(100)))
	return gross.Mul(factor)
}

// CostValue costo total de la línea al snapshot registrado.
func (it *InvoiceItem) CostValue() decimal.Decimal {
	return it.UnitCost.Mul(decimal.NewFromInt(it.Quantity))
}

// Margin margen de la línea: valor neto menos costo.
func (it *InvoiceItem) Margin() decimal.Decimal {
	return it.NetValue().Sub(it.CostValue())
}
