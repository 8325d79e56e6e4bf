package repository

import "github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	Create(order *entity.Order) error
	CreateItem(item *entity.OrderItem) error
	Update(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error)
	MaxSequenceForYear(year int) (int, error)
	List(limit, offset int) ([]*entity.Order, error)
}
