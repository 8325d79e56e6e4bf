package billing

import (
	"context"
	"time"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de inventario y facturación: el insert/update del documento y
// sus efectos de stock se confirman juntos o no se confirma nada.
type TxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// StockRecorder integra facturación con el motor de inventario: aplica un
// movimiento usando los repositorios del caller (misma transacción). Si
// retorna error (ej: stock insuficiente), el caller debe hacer rollback.
// Los eventos devueltos se despachan después del commit.
type StockRecorder interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		product *entity.Product,
		in stock.MovementInput,
		now time.Time,
	) (*entity.StockMovement, []event.Event, error)
}
