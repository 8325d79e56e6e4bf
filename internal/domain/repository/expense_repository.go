package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// ExpenseRepository define el puerto de persistencia para Expense.
type ExpenseRepository interface {
	Create(expense *entity.Expense) error
	GetByID(id string) (*entity.Expense, error)
	ListByMonth(year int, month time.Month, locationID string) ([]*entity.Expense, error)
	// SumByMonth total de gastos del mes para una ubicación (0 si no hay).
	SumByMonth(year int, month time.Month, locationID string) (decimal.Decimal, error)
}
