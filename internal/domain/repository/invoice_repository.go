package repository

import (
	"time"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	// Update actualiza cabecera: estado, totales, montos pagados y la guarda
	// StockDeducted. Las líneas se reemplazan vía ReplaceItems.
	Update(invoice *entity.Invoice) error
	ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error
	GetByID(id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error)
	// MaxSequenceForYear devuelve el mayor consecutivo ya asignado en el año
	// (0 si no hay facturas). Debe leerse dentro de la transacción de creación.
	MaxSequenceForYear(year int) (int, error)
	List(limit, offset int) ([]*entity.Invoice, error)
	// ListCommittedByMonth lista las facturas comprometidas (sent, paid,
	// partially_paid) de un mes y ubicación, con sus líneas cargadas.
	ListCommittedByMonth(year int, month time.Month, locationID string) ([]*entity.Invoice, error)
}
