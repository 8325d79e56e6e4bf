package entity

import "time"

// StockLevel representa la proyección de stock actual por (producto, ubicación).
// Es una caché derivada del libro de movimientos: la fila se crea de forma
// perezosa con el primer movimiento que toca el par y solo la escribe el paso
// de aplicación de StockService, nunca un caller externo.
type StockLevel struct {
	ProductID    string
	LocationID   string
	Quantity     int64 // >= 0 siempre; las salidas se rechazan o se recortan a cero
	ReorderLevel int64 // umbral de reposición (>= 0)
	UpdatedAt    time.Time
}

// Estados de disponibilidad de stock para consultas de lectura.
const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// Status clasifica el nivel: out_of_stock si 0, low_stock si 0 < qty <= reorder,
// in_stock en el resto.
func (s *StockLevel) Status() string {
	switch {
	case s.Quantity == 0:
		return StockStatusOutOfStock
	case s.Quantity <= s.ReorderLevel:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
