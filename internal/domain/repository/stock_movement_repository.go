package repository

import (
	"time"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos.
// El libro es append-only: no existe Delete, y la única actualización
// permitida es la corrección auditada de notas. Cualquier otra mutación de un
// movimiento persistido es una violación de invariante.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(reference string) ([]*entity.StockMovement, error)
	// UpdateNotes corrige únicamente las notas del movimiento, dejando rastro
	// del actor y el momento. Los campos de negocio no se tocan.
	UpdateNotes(id, notes, updatedBy string) error
}
