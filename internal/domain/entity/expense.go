package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense representa un gasto registrado contra una ubicación, insumo del
// reporte mensual de resultados.
type Expense struct {
	ID         string
	LocationID string
	Label      string
	Amount     decimal.Decimal
	Date       time.Time
	CreatedBy  string
	CreatedAt  time.Time
}
