package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// ReportService calcula el cierre mensual de resultados por ubicación a partir
// de las facturas comprometidas del mes y los gastos registrados. El resultado
// se materializa por upsert sobre la clave (mes, año, ubicación): regenerar es
// idempotente y reemplaza las cifras completas, nunca acumula.
type ReportService struct {
	invoiceRepo  repository.InvoiceRepository
	expenseRepo  repository.ExpenseRepository
	reportRepo   repository.ReportRepository
	locationRepo repository.LocationRepository
	log          *logger.Logger
}

// NewReportService construye el servicio de reportes.
func NewReportService(
	invoiceRepo repository.InvoiceRepository,
	expenseRepo repository.ExpenseRepository,
	reportRepo repository.ReportRepository,
	locationRepo repository.LocationRepository,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		invoiceRepo:  invoiceRepo,
		expenseRepo:  expenseRepo,
		reportRepo:   reportRepo,
		locationRepo: locationRepo,
		log:          log,
	}
}

// GenerateMonthlyReport recomputa y persiste el reporte del mes para una
// ubicación. Ventas brutas = valor de línea ANTES de cualquier descuento;
// los descuentos de línea y el global se revelan aparte en TotalDiscounts.
func (s *ReportService) GenerateMonthlyReport(ctx context.Context, year int, month time.Month, locationID string) (*entity.MonthlyReport, error) {
	if month < time.January || month > time.December || year <= 0 || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	loc, err := s.locationRepo.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	invoices, err := s.invoiceRepo.ListCommittedByMonth(year, month, locationID)
	if err != nil {
		return nil, err
	}

	gross := decimal.Zero
	discounts := decimal.Zero
	cogs := decimal.Zero
	grossProfit := decimal.Zero
	for _, inv := range invoices {
		for _, item := range inv.Items {
			lineGross := item.GrossValue()
			gross = gross.Add(lineGross)
			discounts = discounts.Add(lineGross.Sub(item.NetValue()))
			cogs = cogs.Add(item.CostValue())
		}
		discounts = discounts.Add(inv.GlobalDiscount)
		grossProfit = grossProfit.Add(inv.TotalProfit)
	}

	expenses, err := s.expenseRepo.SumByMonth(year, month, locationID)
	if err != nil {
		return nil, err
	}

	report := &entity.MonthlyReport{
		Month:          int(month),
		Year:           year,
		LocationID:     locationID,
		GrossSales:     gross,
		TotalDiscounts: discounts,
		COGS:           cogs,
		GrossProfit:    grossProfit,
		TotalExpenses:  expenses,
		NetProfit:      grossProfit.Sub(expenses),
		GeneratedAt:    time.Now(),
	}
	if err := s.reportRepo.Upsert(report); err != nil {
		return nil, err
	}
	s.log.Info().
		Int("year", year).
		Int("month", int(month)).
		Str("location_id", locationID).
		Int("invoices", len(invoices)).
		Msg("reporte mensual regenerado")
	return report, nil
}

// GenerateForAllLocations recomputa el mes para todas las ubicaciones. El
// fallo de una ubicación se loguea y no frena a las demás; devuelve los
// reportes que sí se generaron y el último error observado.
func (s *ReportService) GenerateForAllLocations(ctx context.Context, year int, month time.Month) ([]*entity.MonthlyReport, error) {
	locations, err := s.locationRepo.List(1000, 0)
	if err != nil {
		return nil, err
	}
	var reports []*entity.MonthlyReport
	var lastErr error
	for _, loc := range locations {
		report, err := s.GenerateMonthlyReport(ctx, year, month, loc.ID)
		if err != nil {
			s.log.Error().Err(err).
				Str("location_id", loc.ID).
				Msg("fallo generando reporte mensual de la ubicación")
			lastErr = err
			continue
		}
		reports = append(reports, report)
	}
	return reports, lastErr
}

// GetReport devuelve el reporte materializado del mes, si existe.
func (s *ReportService) GetReport(ctx context.Context, year int, month time.Month, locationID string) (*entity.MonthlyReport, error) {
	report, err := s.reportRepo.Get(year, month, locationID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	return report, nil
}

// ListReports lista los reportes del año para una ubicación.
func (s *ReportService) ListReports(ctx context.Context, year int, locationID string) ([]*entity.MonthlyReport, error) {
	return s.reportRepo.ListByYear(year, locationID)
}
