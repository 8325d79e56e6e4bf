package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/config"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

const maxNumberAttempts = 3

// OrderService orquesta el canal alterno de ventas. Los pedidos comparten la
// semántica de stock de la factura: el inventario se descuenta al entrar a un
// estado que compromete stock, se restaura al cancelar, y la guarda
// StockDeducted asegura a lo sumo un descuento vigente por pedido.
type OrderService struct {
	txRunner     TxRunner
	stockSvc     StockRecorder
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	dispatcher   *notify.Dispatcher
	settings     config.CompanySettings
	log          *logger.Logger
}

// NewOrderService construye el servicio de pedidos.
func NewOrderService(
	txRunner TxRunner,
	stockSvc StockRecorder,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	dispatcher *notify.Dispatcher,
	settings config.CompanySettings,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		txRunner:     txRunner,
		stockSvc:     stockSvc,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		dispatcher:   dispatcher,
		settings:     settings,
		log:          log,
	}
}

// OrderItemInput línea de entrada para crear un pedido. UnitPrice en cero
// toma el precio de lista del producto (mayorista si PackMode, detal si no).
type OrderItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	PackMode  bool
}

// CreateOrderInput entrada para Create.
type CreateOrderInput struct {
	LocationID    string
	ClientName    string
	InitialStatus string // vacío = pending; validated compromete stock de inmediato
	Notes         string
	ActorID       string
	Items         []OrderItemInput
}

// Create persiste el pedido y sus líneas; si el estado inicial compromete
// stock lo descuenta en la misma transacción.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	if in.LocationID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	status := in.InitialStatus
	if status == "" {
		status = entity.OrderStatusPending
	}
	switch status {
	case entity.OrderStatusPending, entity.OrderStatusValidated:
	default:
		return nil, domain.ErrInvalidInput
	}

	loc, err := s.locationRepo.GetByID(in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	ord := &entity.Order{
		ID:         uuid.New().String(),
		Status:     status,
		LocationID: in.LocationID,
		ClientName: in.ClientName,
		Notes:      in.Notes,
		CreatedBy:  in.ActorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ord.Items, err = s.buildItems(ord.ID, in.Items)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, it := range ord.Items {
		total = total.Add(it.Value())
	}
	ord.Total = total

	var events []event.Event
	year := now.Year()

	for attempt := 1; ; attempt++ {
		err = s.txRunner.RunOrder(ctx, func(
			movRepo repository.StockMovementRepository,
			levelRepo repository.StockLevelRepository,
			productRepo repository.ProductRepository,
			orderRepo repository.OrderRepository,
		) error {
			seq, err := orderRepo.MaxSequenceForYear(year)
			if err != nil {
				return err
			}
			ord.Number = fmt.Sprintf("%s-%d-%05d", s.settings.OrderPrefix, year, seq+1)
			if err := orderRepo.Create(ord); err != nil {
				return err
			}
			for _, item := range ord.Items {
				if err := orderRepo.CreateItem(item); err != nil {
					return err
				}
			}
			if entity.OrderStatusCommitsStock(status) {
				evs, err := s.deductInTx(movRepo, levelRepo, productRepo, orderRepo, ord, in.ActorID, now)
				if err != nil {
					return err
				}
				events = evs
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicate) && attempt < maxNumberAttempts {
			s.log.Warn().
				Str("number", ord.Number).
				Int("attempt", attempt).
				Msg("colisión de consecutivo de pedido, reintentando")
			events = nil
			continue
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, events...)
	return ord, nil
}

// ChangeStatus transiciona el pedido validando la máquina de estados. El
// efecto de stock sale del DIFF de membresía: entrar al conjunto que
// compromete stock descuenta, salir de él (cancelación) restaura; moverse
// dentro del conjunto (validated → shipped) no toca el inventario.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID, newStatus, actorID string) (*entity.Order, error) {
	var ord *entity.Order
	var events []event.Event
	now := time.Now()
	err := s.txRunner.RunOrder(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		var err error
		ord, err = s.getWithItems(orderRepo, orderID)
		if err != nil {
			return err
		}
		oldStatus := ord.Status
		if !entity.OrderCanTransition(oldStatus, newStatus) {
			return &domain.InvalidTransitionError{Document: "order", From: oldStatus, To: newStatus}
		}

		wasCommitted := entity.OrderStatusCommitsStock(oldStatus)
		willCommit := entity.OrderStatusCommitsStock(newStatus)
		switch {
		case willCommit && !wasCommitted:
			evs, err := s.deductInTx(movRepo, levelRepo, productRepo, orderRepo, ord, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		case !willCommit && wasCommitted:
			evs, err := s.restoreInTx(movRepo, levelRepo, productRepo, orderRepo, ord, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}

		ord.Status = newStatus
		ord.UpdatedAt = now
		if err := orderRepo.Update(ord); err != nil {
			return err
		}
		events = append(events, event.StatusChanged{
			Document:   "order",
			DocumentID: ord.ID,
			Number:     ord.Number,
			From:       oldStatus,
			To:         newStatus,
			At:         now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return ord, nil
}

// Cancel restaura el stock si estaba comprometido y marca el pedido cancelado.
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID string) (*entity.Order, error) {
	return s.ChangeStatus(ctx, orderID, entity.OrderStatusCancelled, actorID)
}

// GetOrder obtiene un pedido por ID con sus líneas.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.getWithItems(s.orderRepo, id)
}

// ListOrders lista pedidos paginados.
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	return s.orderRepo.List(limit, offset)
}

// ── internos ────────────────────────────────────────────────────────────────

func (s *OrderService) deductInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	ord *entity.Order,
	actorID string,
	now time.Time,
) ([]event.Event, error) {
	if ord.StockDeducted {
		return nil, nil
	}
	if ord.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var events []event.Event
	for _, item := range ord.Items {
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		_, evs, err := s.stockSvc.ApplyInTx(movRepo, levelRepo, product, stock.MovementInput{
			ProductID:        item.ProductID,
			Kind:             entity.MovementKindExit,
			Quantity:         item.Quantity,
			SourceLocationID: ord.LocationID,
			PackMode:         item.PackMode,
			Reference:        ord.Number,
			ActorID:          actorOr(ord.CreatedBy, actorID),
		}, now)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	ord.StockDeducted = true
	ord.UpdatedAt = now
	if err := orderRepo.Update(ord); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *OrderService) restoreInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	ord *entity.Order,
	actorID string,
	now time.Time,
) ([]event.Event, error) {
	if !ord.StockDeducted {
		return nil, nil
	}
	var events []event.Event
	for _, item := range ord.Items {
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		_, evs, err := s.stockSvc.ApplyInTx(movRepo, levelRepo, product, stock.MovementInput{
			ProductID:        item.ProductID,
			Kind:             entity.MovementKindReturn,
			Quantity:         item.Quantity,
			SourceLocationID: ord.LocationID,
			PackMode:         item.PackMode,
			Correction:       true,
			Reference:        ord.Number,
			ActorID:          actorOr(ord.CreatedBy, actorID),
		}, now)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	ord.StockDeducted = false
	ord.UpdatedAt = now
	if err := orderRepo.Update(ord); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *OrderService) buildItems(orderID string, inputs []OrderItemInput) ([]*entity.OrderItem, error) {
	items := make([]*entity.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == "" || in.Quantity <= 0 || in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p, err := s.productRepo.GetByID(in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		price := in.UnitPrice
		if price.IsZero() {
			if in.PackMode {
				price = p.WholesalePrice
			} else {
				price = p.RetailPrice
			}
		}
		items = append(items, &entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: price,
			PackMode:  in.PackMode,
		})
	}
	return items, nil
}

func (s *OrderService) getWithItems(orderRepo repository.OrderRepository, id string) (*entity.Order, error) {
	ord, err := orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, domain.ErrNotFound
	}
	if ord.Items == nil {
		items, err := orderRepo.GetItemsByOrderID(id)
		if err != nil {
			return nil, err
		}
		ord.Items = items
	}
	return ord, nil
}

func actorOr(def, actor string) string {
	if actor != "" {
		return actor
	}
	return def
}
