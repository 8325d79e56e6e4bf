package entity

import "time"

// Location representa un punto de venta o bodega que puede mantener inventario.
// El flag IsWarehouse distingue bodega de punto de venta, pero ambos se
// comportan igual para el libro de movimientos.
type Location struct {
	ID          string
	Code        string // código corto único, ej. "BOD-01", "PV-CENTRO"
	Name        string
	Address     string
	IsWarehouse bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
