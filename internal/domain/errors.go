package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	// ErrInvariantViolation marca intentos de mutar o borrar hechos inmutables
	// (movimientos de stock) o de aplicar dos veces un efecto ya aplicado.
	ErrInvariantViolation = errors.New("violación de invariante")
)

// InsufficientStockError detalla un rechazo por stock insuficiente con las
// cantidades necesarias para un mensaje accionable al usuario.
type InsufficientStockError struct {
	ProductID    string
	LocationID   string
	Current      int64 // cantidad actual en la ubicación
	Required     int64 // cantidad efectiva solicitada (en unidades)
	ReorderLevel int64 // umbral mínimo configurado
	MaxAllowed   int64 // máximo retirable: max(Current - ReorderLevel, 0)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en ubicación %s: actual=%d, solicitado=%d, mínimo=%d, máximo retirable=%d",
		e.ProductID, e.LocationID, e.Current, e.Required, e.ReorderLevel, e.MaxAllowed)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError rechaza un cambio de estado no permitido por la
// máquina de estados del documento.
type InvalidTransitionError struct {
	Document string // "invoice", "receipt", "order"
	From     string
	To       string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición inválida de %s: %s -> %s", e.Document, e.From, e.To)
}

// Is permite errors.Is(err, ErrConflict).
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrConflict
}
