package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReport es el cierre mensual de resultados por ubicación: una fila por
// (mes, año, ubicación), totalmente derivada y recomputable. Se recalcula por
// upsert; nunca se edita a mano ni se acumula sobre cifras viejas.
//
// Convención de ventas brutas: valor de línea ANTES de cualquier descuento
// (cantidad x precio unitario). Los descuentos de línea y el descuento global
// se revelan aparte en TotalDiscounts.
type MonthlyReport struct {
	Month         int // 1-12
	Year          int
	LocationID    string
	GrossSales    decimal.Decimal
	TotalDiscounts decimal.Decimal
	COGS          decimal.Decimal // costo de la mercancía vendida al snapshot de línea
	GrossProfit   decimal.Decimal // suma de TotalProfit de las facturas comprometidas
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal // GrossProfit - TotalExpenses
	GeneratedAt   time.Time
}
