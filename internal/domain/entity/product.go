package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (venta al detal y al por mayor).
// El SKU es inmutable una vez asignado. Los precios son mutables pero nunca
// alteran registros históricos: las líneas de documentos llevan su propio
// snapshot de precio y costo.
type Product struct {
	ID             string
	SKU            string // código único, inmutable
	Name           string
	Description    string
	RetailPrice    decimal.Decimal // precio de venta por unidad
	WholesalePrice decimal.Decimal // precio de venta por paquete (al por mayor)
	UnitsPerPack   int64           // unidades por paquete mayorista (>= 1)
	Cost           decimal.Decimal // costo de compra por unidad (snapshot actual)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PackCost devuelve el costo de un paquete mayorista al costo unitario actual.
func (p *Product) PackCost() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(p.UnitsPerPack))
}

// EffectiveUnits convierte una cantidad registrada a unidades: si packMode,
// multiplica por las unidades por paquete.
func (p *Product) EffectiveUnits(quantity int64, packMode bool) int64 {
	if packMode {
		return quantity * p.UnitsPerPack
	}
	return quantity
}
