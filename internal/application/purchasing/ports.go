package purchasing

import (
	"context"
	"time"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de inventario y recepciones.
type TxRunner interface {
	RunReceipt(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		receiptRepo repository.ReceiptRepository,
	) error) error
}

// StockRecorder integra recepciones con el motor de inventario (misma
// transacción del caller). Los eventos devueltos se despachan tras el commit.
type StockRecorder interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		product *entity.Product,
		in stock.MovementInput,
		now time.Time,
	) (*entity.StockMovement, []event.Event, error)
}
