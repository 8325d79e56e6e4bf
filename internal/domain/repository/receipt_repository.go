package repository

import (
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia para Receipt y sus líneas.
type ReceiptRepository interface {
	Create(receipt *entity.Receipt) error
	CreateItem(item *entity.ReceiptItem) error
	// Update actualiza cabecera, totales y las guardas CostsSpread/StockAdded.
	Update(receipt *entity.Receipt) error
	// UpdateItemCost persiste el costo unitario ajustado por el prorrateo del flete.
	UpdateItemCost(itemID string, unitCost decimal.Decimal) error
	ReplaceItems(receiptID string, items []*entity.ReceiptItem) error
	GetByID(id string) (*entity.Receipt, error)
	GetItemsByReceiptID(receiptID string) ([]*entity.ReceiptItem, error)
	MaxSequenceForYear(year int) (int, error)
	List(limit, offset int) ([]*entity.Receipt, error)
}
