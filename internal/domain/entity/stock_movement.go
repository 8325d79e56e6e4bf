package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (conjunto cerrado).
const (
	MovementKindEntry      = "ENTRY"      // entrada (recepción de mercancía)
	MovementKindExit       = "EXIT"       // salida (venta)
	MovementKindTransfer   = "TRANSFER"   // traslado entre ubicaciones
	MovementKindAdjustment = "ADJUSTMENT" // ajuste absoluto tras conteo físico
	MovementKindReturn     = "RETURN"     // devolución (acredita como entrada, etiquetada aparte)
)

// ValidMovementKind indica si kind pertenece al conjunto cerrado de tipos.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindEntry, MovementKindExit, MovementKindTransfer,
		MovementKindAdjustment, MovementKindReturn:
		return true
	}
	return false
}

// StockMovement es el hecho atómico del libro de inventario: inmutable una vez
// persistido, nunca se borra. Las correcciones se hacen registrando un
// movimiento compensatorio, jamás editando la historia. La única excepción
// explícita y auditada es la corrección de notas (campos de metadatos).
type StockMovement struct {
	ID               string
	ProductID        string
	Kind             string // ENTRY, EXIT, TRANSFER, ADJUSTMENT, RETURN
	Quantity         int64  // siempre positiva; la semántica depende de Kind
	SourceLocationID string // requerida para EXIT/ADJUSTMENT/RETURN/TRANSFER
	DestLocationID   string // requerida para ENTRY/TRANSFER
	PackMode         bool   // true si Quantity denota paquetes mayoristas
	Correction       bool   // true si es reverso de cancelación/corrección (omite el control de disponibilidad)
	UnitCost         *decimal.Decimal // costo unitario registrado (entradas/recepciones)
	Reference        string // número de factura, recepción o pedido que lo originó
	Notes            string
	CreatedBy        string // UserID del actor
	CreatedAt        time.Time
	NotesUpdatedBy   string // auditoría de la corrección de notas (vacío si nunca se corrigió)
	NotesUpdatedAt   *time.Time
}
