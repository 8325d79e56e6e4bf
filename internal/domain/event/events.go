// Package event define los eventos de dominio que los servicios publican tras
// un commit exitoso. El despachador los entrega al colaborador de
// notificaciones; una falla de entrega jamás revierte la mutación de stock.
package event

import "time"

// Nombres de evento.
const (
	NameLowStock          = "low_stock"
	NameTransferCompleted = "transfer_completed"
	NameStatusChanged     = "status_changed"
)

// Event es un evento de dominio listo para despachar.
type Event interface {
	Name() string
	OccurredAt() time.Time
}

// LowStock se emite cuando un movimiento deja una ubicación en o por debajo de
// su umbral de reposición.
type LowStock struct {
	ProductID    string
	LocationID   string
	Quantity     int64
	ReorderLevel int64
	At           time.Time
}

func (e LowStock) Name() string          { return NameLowStock }
func (e LowStock) OccurredAt() time.Time { return e.At }

// TransferCompleted se emite al completar un traslado entre ubicaciones.
type TransferCompleted struct {
	ProductID        string
	SourceLocationID string
	DestLocationID   string
	Quantity         int64 // en unidades efectivas
	MovementID       string
	At               time.Time
}

func (e TransferCompleted) Name() string          { return NameTransferCompleted }
func (e TransferCompleted) OccurredAt() time.Time { return e.At }

// StatusChanged se emite cuando un documento comercial cambia de estado.
type StatusChanged struct {
	Document   string // "invoice", "receipt", "order"
	DocumentID string
	Number     string
	From       string
	To         string
	At         time.Time
}

func (e StatusChanged) Name() string          { return NameStatusChanged }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
