package repository

import (
	"time"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// ReportRepository define el puerto de persistencia para MonthlyReport.
// Upsert reemplaza por completo las cifras de la clave (mes, año, ubicación):
// recomputar debe ser seguro de repetir y jamás acumular sobre cifras viejas.
type ReportRepository interface {
	Upsert(report *entity.MonthlyReport) error
	Get(year int, month time.Month, locationID string) (*entity.MonthlyReport, error)
	ListByYear(year int, locationID string) ([]*entity.MonthlyReport, error)
}
