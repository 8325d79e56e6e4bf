package repository

import "github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"

// StockLevelRepository define el puerto para la proyección de stock por
// (producto, ubicación). Usado dentro de transacciones para garantizar
// consistencia; solo StockService escribe Quantity.
type StockLevelRepository interface {
	Get(productID, locationID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE) antes de
	// computar la nueva cantidad.
	GetForUpdate(productID, locationID string) (*entity.StockLevel, error)
	Upsert(level *entity.StockLevel) error
	// UpdateReorderLevel ajusta solo el umbral de reposición (master data, no
	// pasa por el libro).
	UpdateReorderLevel(productID, locationID string, reorderLevel int64) error
	// SumByProduct suma la cantidad del producto en todas las ubicaciones.
	SumByProduct(productID string) (int64, error)
	ListByLocation(locationID string, limit, offset int) ([]*entity.StockLevel, error)
	// ListBelowReorder lista los niveles en o por debajo de su umbral.
	ListBelowReorder(locationID string) ([]*entity.StockLevel, error)
}
