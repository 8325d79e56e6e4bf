package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo implementación de ReportRepository sobre PostgreSQL.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador. Acepta pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

const reportColumns = `
	month, year, location_id, gross_sales, total_discounts, cogs,
	gross_profit, total_expenses, net_profit, generated_at`

// Upsert reemplaza por completo las cifras de la clave (mes, año, ubicación).
func (r *ReportRepo) Upsert(rep *entity.MonthlyReport) error {
	query := `
		INSERT INTO monthly_reports (month, year, location_id, gross_sales, total_discounts, cogs, gross_profit, total_expenses, net_profit, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (month, year, location_id) DO UPDATE SET
			gross_sales = EXCLUDED.gross_sales,
			total_discounts = EXCLUDED.total_discounts,
			cogs = EXCLUDED.cogs,
			gross_profit = EXCLUDED.gross_profit,
			total_expenses = EXCLUDED.total_expenses,
			net_profit = EXCLUDED.net_profit,
			generated_at = EXCLUDED.generated_at`
	_, err := r.q.Exec(context.Background(), query,
		rep.Month, rep.Year, rep.LocationID, rep.GrossSales, rep.TotalDiscounts, rep.COGS,
		rep.GrossProfit, rep.TotalExpenses, rep.NetProfit, rep.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert monthly report: %w", err)
	}
	return nil
}

func (r *ReportRepo) Get(year int, month time.Month, locationID string) (*entity.MonthlyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM monthly_reports WHERE year = $1 AND month = $2 AND location_id = $3`
	var rep entity.MonthlyReport
	err := r.q.QueryRow(context.Background(), query, year, int(month), locationID).Scan(
		&rep.Month, &rep.Year, &rep.LocationID, &rep.GrossSales, &rep.TotalDiscounts, &rep.COGS,
		&rep.GrossProfit, &rep.TotalExpenses, &rep.NetProfit, &rep.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get monthly report: %w", err)
	}
	return &rep, nil
}

func (r *ReportRepo) ListByYear(year int, locationID string) ([]*entity.MonthlyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM monthly_reports WHERE year = $1 AND location_id = $2 ORDER BY month ASC`
	rows, err := r.q.Query(context.Background(), query, year, locationID)
	if err != nil {
		return nil, fmt.Errorf("list monthly reports: %w", err)
	}
	defer rows.Close()
	var list []*entity.MonthlyReport
	for rows.Next() {
		var rep entity.MonthlyReport
		if err := rows.Scan(&rep.Month, &rep.Year, &rep.LocationID, &rep.GrossSales, &rep.TotalDiscounts, &rep.COGS,
			&rep.GrossProfit, &rep.TotalExpenses, &rep.NetProfit, &rep.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan monthly report: %w", err)
		}
		list = append(list, &rep)
	}
	return list, rows.Err()
}
