package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de recepción de proveedor.
const (
	ReceiptStatusDraft     = "draft"
	ReceiptStatusReceived  = "received"
	ReceiptStatusCancelled = "cancelled"
)

var receiptTransitions = map[string][]string{
	ReceiptStatusDraft:     {ReceiptStatusReceived, ReceiptStatusCancelled},
	ReceiptStatusReceived:  {ReceiptStatusCancelled},
	ReceiptStatusCancelled: {},
}

// ReceiptCanTransition indica si el cambio de estado from -> to está permitido.
func ReceiptCanTransition(from, to string) bool {
	for _, next := range receiptTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Receipt representa una recepción de mercancía de proveedor: el documento
// simétrico a la factura, que acredita stock en vez de debitarlo.
// DeliveryCost (flete/aduana) se prorratea entre las líneas por participación
// en el valor ANTES de registrar las entradas, de modo que el costo registrado
// ya incluye el flete. StockAdded es la guarda de idempotencia.
type Receipt struct {
	ID             string
	Number         string // consecutivo legible, ej. "REC-2026-00007"
	Status         string
	LocationID     string // ubicación que recibe la mercancía
	SupplierName   string
	DeliveryCost   decimal.Decimal // costo de envío/aduana a prorratear
	CostsSpread    bool            // true cuando DeliveryCost ya fue distribuido en las líneas
	MerchandiseTotal decimal.Decimal // suma de líneas a costo original (sin flete)
	Total          decimal.Decimal // MerchandiseTotal + DeliveryCost
	StockAdded     bool
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*ReceiptItem
}

// ReceiptItem línea de recepción. UnitCost arranca en el costo pactado con el
// proveedor y sube con el prorrateo del flete; ese costo ajustado es el que se
// vuelve snapshot de costo del producto para ventas futuras.
type ReceiptItem struct {
	ID        string
	ReceiptID string
	ProductID string
	Quantity  int64           // en unidades, o en paquetes si PackMode
	UnitCost  decimal.Decimal // costo por unidad recibida (por paquete si PackMode)
	PackMode  bool
}

// Value valor de la línea: cantidad por costo unitario.
func (it *ReceiptItem) Value() decimal.Decimal {
	return it.UnitCost.Mul(decimal.NewFromInt(it.Quantity))
}

// PerUnitCost costo por unidad suelta: si la línea es mayorista divide el
// costo de paquete entre las unidades por paquete del producto.
func (it *ReceiptItem) PerUnitCost(unitsPerPack int64) decimal.Decimal {
	if !it.PackMode || unitsPerPack <= 1 {
		return it.UnitCost
	}
	return it.UnitCost.Div(decimal.NewFromInt(unitsPerPack))
}
