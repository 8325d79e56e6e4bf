package billing

import (
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// Totals totales computados de una factura.
type Totals struct {
	Subtotal decimal.Decimal // suma de líneas netas de descuento de línea
	TaxTotal decimal.Decimal
	Total    decimal.Decimal // Subtotal + TaxTotal - GlobalDiscount
	Profit   decimal.Decimal // suma de márgenes de línea - GlobalDiscount
}

// CalculateTotals computa los totales de la factura a partir de sus líneas.
// El margen de línea usa el snapshot de costo registrado en la línea, nunca
// el costo actual del producto. El descuento global afecta Total y Profit
// pero no el Subtotal.
func CalculateTotals(items []*entity.InvoiceItem, globalDiscount, taxRatePct decimal.Decimal) Totals {
	var subtotal, profit decimal.Decimal
	for _, it := range items {
		subtotal = subtotal.Add(it.NetValue())
		profit = profit.Add(it.Margin())
	}
	tax := decimal.Zero
	if !taxRatePct.IsZero() {
		tax = subtotal.Mul(taxRatePct).Div(decimal.NewFromInt(100)).Round(2)
	}
	return Totals{
		Subtotal: subtotal,
		TaxTotal: tax,
		Total:    subtotal.Add(tax).Sub(globalDiscount),
		Profit:   profit.Sub(globalDiscount),
	}
}
