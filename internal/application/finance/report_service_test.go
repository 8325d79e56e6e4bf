package finance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/finance"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/testutil"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Armado del servicio bajo test
// ──────────────────────────────────────────────────────────────────────────────

type financeEnv struct {
	svc         *finance.ReportService
	invoiceRepo *testutil.InvoiceRepo
	expenseRepo *testutil.ExpenseRepo
	reportRepo  *testutil.ReportRepo
}

func newFinanceEnv(t *testing.T, locationIDs ...string) *financeEnv {
	t.Helper()
	invoiceRepo := testutil.NewInvoiceRepo()
	expenseRepo := testutil.NewExpenseRepo()
	reportRepo := testutil.NewReportRepo()
	locationRepo := testutil.NewLocationRepo(locationIDs...)
	svc := finance.NewReportService(invoiceRepo, expenseRepo, reportRepo, locationRepo, logger.Nop())
	return &financeEnv{svc: svc, invoiceRepo: invoiceRepo, expenseRepo: expenseRepo, reportRepo: reportRepo}
}

// seedInvoice inserta una factura con sus líneas directamente en el fake.
func (e *financeEnv) seedInvoice(id, status, locationID string, createdAt time.Time, globalDiscount, totalProfit int64, items ...*entity.InvoiceItem) {
	e.invoiceRepo.Invoices[id] = &entity.Invoice{
		ID:             id,
		Number:         "FAC-" + id,
		Status:         status,
		LocationID:     locationID,
		GlobalDiscount: decimal.NewFromInt(globalDiscount),
		TotalProfit:    decimal.NewFromInt(totalProfit),
		CreatedAt:      createdAt,
	}
	e.invoiceRepo.Items[id] = items
}

func repEq(t *testing.T, expected int64, actual decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(expected).Equal(actual), "%s: esperado %d, obtenido %s", msg, expected, actual)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cálculo del reporte mensual
// ──────────────────────────────────────────────────────────────────────────────

// Facturas del mes:
//
//	A (paid):  10 x 100 con 10% de línea, costo 60; descuento global 50; utilidad 250
//	B (sent):   5 x 200 sin descuento, costo 120; utilidad 400
//	C (draft) y D (otra ubicación): excluidas
//
// Ventas brutas 2000 (antes de cualquier descuento), descuentos 150
// (100 de línea + 50 global), COGS 1200, utilidad bruta 650, gastos 200,
// utilidad neta 450.
func TestGenerateMonthlyReport_Cifras(t *testing.T) {
	env := newFinanceEnv(t, "loc1", "loc2")
	march := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	env.seedInvoice("a", entity.InvoiceStatusPaid, "loc1", march, 50, 250,
		&entity.InvoiceItem{Quantity: 10, UnitPrice: decimal.NewFromInt(100), DiscountPct: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(60)},
	)
	env.seedInvoice("b", entity.InvoiceStatusSent, "loc1", march, 0, 400,
		&entity.InvoiceItem{Quantity: 5, UnitPrice: decimal.NewFromInt(200), UnitCost: decimal.NewFromInt(120)},
	)
	env.seedInvoice("c", entity.InvoiceStatusDraft, "loc1", march, 0, 999,
		&entity.InvoiceItem{Quantity: 99, UnitPrice: decimal.NewFromInt(999), UnitCost: decimal.NewFromInt(1)},
	)
	env.seedInvoice("d", entity.InvoiceStatusPaid, "loc2", march, 0, 999,
		&entity.InvoiceItem{Quantity: 99, UnitPrice: decimal.NewFromInt(999), UnitCost: decimal.NewFromInt(1)},
	)

	env.expenseRepo.Expenses = append(env.expenseRepo.Expenses,
		&entity.Expense{ID: "e1", LocationID: "loc1", Label: "Arriendo", Amount: decimal.NewFromInt(150), Date: march},
		&entity.Expense{ID: "e2", LocationID: "loc1", Label: "Servicios", Amount: decimal.NewFromInt(50), Date: march},
		&entity.Expense{ID: "e3", LocationID: "loc1", Label: "Otro mes", Amount: decimal.NewFromInt(999), Date: march.AddDate(0, 1, 0)},
	)

	report, err := env.svc.GenerateMonthlyReport(context.Background(), 2026, time.March, "loc1")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Month)
	assert.Equal(t, 2026, report.Year)
	repEq(t, 2000, report.GrossSales, "ventas brutas antes de cualquier descuento")
	repEq(t, 150, report.TotalDiscounts, "descuentos de línea + global")
	repEq(t, 1200, report.COGS, "costo de mercancía vendida")
	repEq(t, 650, report.GrossProfit, "utilidad bruta")
	repEq(t, 200, report.TotalExpenses, "gastos del mes")
	repEq(t, 450, report.NetProfit, "utilidad neta")

	// Quedó materializado.
	stored, err := env.svc.GetReport(context.Background(), 2026, time.March, "loc1")
	require.NoError(t, err)
	repEq(t, 450, stored.NetProfit, "reporte materializado")
}

// Regenerar reemplaza las cifras completas: jamás acumula sobre las viejas.
func TestGenerateMonthlyReport_RegenerarReemplaza(t *testing.T) {
	env := newFinanceEnv(t, "loc1")
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	env.seedInvoice("a", entity.InvoiceStatusPaid, "loc1", march, 0, 300,
		&entity.InvoiceItem{Quantity: 10, UnitPrice: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(70)},
	)
	ctx := context.Background()

	first, err := env.svc.GenerateMonthlyReport(ctx, 2026, time.March, "loc1")
	require.NoError(t, err)
	repEq(t, 1000, first.GrossSales, "primera corrida")

	// Llega una factura tardía del mismo mes.
	env.seedInvoice("b", entity.InvoiceStatusPaid, "loc1", march, 0, 100,
		&entity.InvoiceItem{Quantity: 5, UnitPrice: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(80)},
	)

	second, err := env.svc.GenerateMonthlyReport(ctx, 2026, time.March, "loc1")
	require.NoError(t, err)
	repEq(t, 1500, second.GrossSales, "la regeneración parte de cero, no acumula")
	repEq(t, 400, second.GrossProfit, "utilidad recomputada completa")

	stored, err := env.svc.GetReport(ctx, 2026, time.March, "loc1")
	require.NoError(t, err)
	repEq(t, 1500, stored.GrossSales, "solo existe la última versión")
}

func TestGenerateMonthlyReport_EntradasInvalidas(t *testing.T) {
	env := newFinanceEnv(t, "loc1")
	ctx := context.Background()

	_, err := env.svc.GenerateMonthlyReport(ctx, 2026, 13, "loc1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.svc.GenerateMonthlyReport(ctx, 2026, time.March, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.svc.GenerateMonthlyReport(ctx, 2026, time.March, "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReport_Inexistente(t *testing.T) {
	env := newFinanceEnv(t, "loc1")
	_, err := env.svc.GetReport(context.Background(), 2026, time.July, "loc1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Generación para todas las ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

// failingExpenseRepo fuerza un error de gastos para una ubicación puntual.
type failingExpenseRepo struct {
	*testutil.ExpenseRepo
	failFor string
}

func (r *failingExpenseRepo) SumByMonth(year int, month time.Month, locationID string) (decimal.Decimal, error) {
	if locationID == r.failFor {
		return decimal.Zero, errors.New("gastos no disponibles")
	}
	return r.ExpenseRepo.SumByMonth(year, month, locationID)
}

// El fallo de una ubicación no frena a las demás: se devuelven los reportes
// generados junto con el último error.
func TestGenerateForAllLocations_AislaFallos(t *testing.T) {
	invoiceRepo := testutil.NewInvoiceRepo()
	expenseRepo := &failingExpenseRepo{ExpenseRepo: testutil.NewExpenseRepo(), failFor: "loc2"}
	reportRepo := testutil.NewReportRepo()
	locationRepo := testutil.NewLocationRepo("loc1", "loc2", "loc3")
	svc := finance.NewReportService(invoiceRepo, expenseRepo, reportRepo, locationRepo, logger.Nop())

	reports, err := svc.GenerateForAllLocations(context.Background(), 2026, time.March)
	require.Error(t, err, "el último error observado se devuelve")
	assert.Len(t, reports, 2, "las ubicaciones sanas sí se generan")
	for _, rep := range reports {
		assert.NotEqual(t, "loc2", rep.LocationID)
	}
}
