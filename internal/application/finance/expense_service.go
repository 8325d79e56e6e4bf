package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

// ExpenseService registra y consulta gastos por ubicación.
type ExpenseService struct {
	expenseRepo  repository.ExpenseRepository
	locationRepo repository.LocationRepository
}

// NewExpenseService construye el servicio de gastos.
func NewExpenseService(expenseRepo repository.ExpenseRepository, locationRepo repository.LocationRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo, locationRepo: locationRepo}
}

// RegisterExpenseInput entrada para RegisterExpense.
type RegisterExpenseInput struct {
	LocationID string
	Label      string
	Amount     decimal.Decimal
	Date       time.Time // vacío = hoy
	ActorID    string
}

// RegisterExpense persiste un gasto contra una ubicación.
func (s *ExpenseService) RegisterExpense(ctx context.Context, in RegisterExpenseInput) (*entity.Expense, error) {
	if in.LocationID == "" || in.Label == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	loc, err := s.locationRepo.GetByID(in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	expense := &entity.Expense{
		ID:         uuid.New().String(),
		LocationID: in.LocationID,
		Label:      in.Label,
		Amount:     in.Amount,
		Date:       date,
		CreatedBy:  in.ActorID,
		CreatedAt:  time.Now(),
	}
	if err := s.expenseRepo.Create(expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByMonth lista los gastos de un mes para una ubicación.
func (s *ExpenseService) ListExpensesByMonth(ctx context.Context, year int, month time.Month, locationID string) ([]*entity.Expense, error) {
	return s.expenseRepo.ListByMonth(year, month, locationID)
}
