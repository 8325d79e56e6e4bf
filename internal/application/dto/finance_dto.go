package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterExpenseRequest body para POST /api/expenses.
type RegisterExpenseRequest struct {
	LocationID string          `json:"location_id" validate:"required,uuid"`
	Label      string          `json:"label" validate:"required,max=200"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Date       *time.Time      `json:"date,omitempty"`
}

// ExpenseResponse salida de gasto.
type ExpenseResponse struct {
	ID         string          `json:"id"`
	LocationID string          `json:"location_id"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MonthlyReportResponse salida del cierre mensual por ubicación.
type MonthlyReportResponse struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	LocationID     string          `json:"location_id"`
	GrossSales     decimal.Decimal `json:"gross_sales"`
	TotalDiscounts decimal.Decimal `json:"total_discounts"`
	COGS           decimal.Decimal `json:"cogs"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
